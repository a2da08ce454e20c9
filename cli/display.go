package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh/terminal"
)

// Display keeps a single status line updated on a terminal.
type Display struct {
	mu    sync.Mutex
	w     io.Writer
	msg   string
	width int
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewDisplay returns a Display writing to w. It returns nil when fd is not a
// terminal, every method being a no-op on a nil Display.
func NewDisplay(w io.Writer, fd int) *Display {
	if !terminal.IsTerminal(fd) {
		return nil
	}
	width, _, err := terminal.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}
	return &Display{w: w, width: width}
}

// NewStderrDisplay returns a Display on stderr.
func NewStderrDisplay() *Display {
	return NewDisplay(os.Stderr, int(os.Stderr.Fd()))
}

// Printf updates the displayed message.
func (d *Display) Printf(format string, args ...interface{}) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.msg = fmt.Sprintf(format, args...)
	d.mu.Unlock()
}

// Do runs a goroutine which refreshes the display, with a spinner, until ctx
// is done or Stop is called.
func (d *Display) Do(ctx context.Context) {
	if d == nil {
		return
	}
	d.done = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		spinner := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				d.clear()
				return
			case <-d.done:
				d.clear()
				return
			case <-ticker.C:
			}
			d.mu.Lock()
			line := spinner[i%len(spinner)] + " " + d.msg
			if len(line) > d.width-1 {
				line = line[:d.width-1]
			}
			fmt.Fprint(d.w, "\r"+line+strings.Repeat(" ", d.width-1-len(line)))
			d.mu.Unlock()
		}
	}()
}

// Stop clears the status line and waits for the refresh goroutine.
func (d *Display) Stop() {
	if d == nil || d.done == nil {
		return
	}
	close(d.done)
	d.wg.Wait()
	d.done = nil
}

func (d *Display) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.w, "\r"+strings.Repeat(" ", d.width-1)+"\r")
}
