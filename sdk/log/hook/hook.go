// Package hook sends logrus entries to Lagoon Logs.
package hook

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/sirupsen/logrus"
)

// DefaultAddr is the in-cluster address of the Lagoon Logs dispatcher.
const DefaultAddr = "application-logs.lagoon.svc:5140"

// SendPolicy defines the policy to use when the buffer is full.
// The default policy is to drop the message as it's always copied to stderr anyway.
type SendPolicy func(*Message, chan *Message)

// DropPolicy drops the message when the buffer is full.
func DropPolicy(m *Message, c chan *Message) {
	select {
	case c <- m:
	default:
		fmt.Fprintln(os.Stderr, "[lagoon-logs] buffer full, dropping message")
	}
}

// BlockPolicy waits for a slot in the buffer.
func BlockPolicy(m *Message, c chan *Message) {
	c <- m
}

// BufSize must be set before calling NewHook.
var BufSize uint = 1024

// Config is the configuration of a Lagoon Logs hook.
type Config struct {
	Addr       string
	Namespace  string
	Hostname   string
	SendPolicy SendPolicy
	Writer     Writer
}

// Hook forwards logrus entries as Lagoon Logs messages. Entry fields are
// sent as the message context.
type Hook struct {
	Hostname   string
	Namespace  string
	SendPolicy SendPolicy
	Extra      map[string]interface{}
	Threshold  logrus.Level

	writer   Writer
	messages chan *Message
	done     chan struct{}
	closed   bool
	l        sync.Mutex
}

// NewHook creates a hook to be added to a logger.
func NewHook(cfg *Config, extra map[string]interface{}) *Hook {
	hostname := cfg.Hostname
	if hostname == "" {
		if h, err := os.Hostname(); err == nil {
			hostname = h
		}
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	w := cfg.Writer
	if w == nil {
		w = NewUDPWriter(addr)
	}
	policy := cfg.SendPolicy
	if policy == nil {
		policy = DropPolicy
	}

	h := &Hook{
		Hostname:   hostname,
		Namespace:  cfg.Namespace,
		SendPolicy: policy,
		Extra:      extra,
		Threshold:  logrus.InfoLevel,
		writer:     w,
		messages:   make(chan *Message, BufSize),
		done:       make(chan struct{}, 1),
	}
	go h.fire()
	return h
}

// Fire is called when a log event is fired.
func (hook *Hook) Fire(entry *logrus.Entry) error {
	msg := hook.messageFromEntry(entry)

	hook.l.Lock()
	defer hook.l.Unlock()
	if hook.closed {
		return nil
	}
	hook.SendPolicy(msg, hook.messages)
	return nil
}

// Levels returns the levels sent to Lagoon Logs.
func (hook *Hook) Levels() []logrus.Level {
	levels := make([]logrus.Level, 0, hook.Threshold+1)
	for l := logrus.PanicLevel; l <= hook.Threshold; l++ {
		levels = append(levels, l)
	}
	return levels
}

// Flush sends all buffered messages before returning.
func (hook *Hook) Flush() {
	hook.l.Lock()
	defer hook.l.Unlock()
	if hook.closed {
		return
	}

	close(hook.messages)
	select {
	case <-hook.done:
	case <-time.After(10 * time.Second):
		fmt.Fprintln(os.Stderr, "[lagoon-logs] flushing timed out")
	}

	hook.messages = make(chan *Message, BufSize)
	hook.done = make(chan struct{}, 1)
	go hook.fire()
}

// Stop flushes the buffer and stops the hook.
func (hook *Hook) Stop() {
	hook.Flush()
	hook.l.Lock()
	defer hook.l.Unlock()
	hook.closed = true
	close(hook.messages)
	<-hook.done
	if c, ok := hook.writer.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

func (hook *Hook) fire() {
	r := retrier.New(retrier.ExponentialBackoff(3, 100*time.Millisecond), nil)
	for message := range hook.messages {
		m := message
		if err := r.Run(func() error { return hook.writer.WriteMessage(m) }); err != nil {
			fmt.Fprintln(os.Stderr, "[lagoon-logs] could not write message after several retries:", err)
		}
	}
	hook.done <- struct{}{}
}

func (hook *Hook) messageFromEntry(entry *logrus.Entry) *Message {
	level := strings.ToUpper(entry.Level.String())
	if entry.Level == logrus.WarnLevel {
		level = "WARNING"
	}
	m := &Message{
		Timestamp:  FormatTimestamp(entry.Time),
		LoggerName: DefaultLoggerName,
		Host:       hook.Hostname,
		Message:    strings.TrimSpace(entry.Message),
		Level:      level,
		Type:       hook.Namespace,
	}
	if len(entry.Data) > 0 {
		m.Context = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			switch t := v.(type) {
			case string, bool, int, int64, float64:
				m.Context[k] = t
			case error:
				m.Context[k] = t.Error()
			default:
				m.Context[k] = fmt.Sprintf("%v", t)
			}
		}
	}
	if len(hook.Extra) > 0 {
		m.Extra = hook.Extra
	}
	// the dispatcher drops context without a namespace
	if m.Type == "" {
		m.Context, m.Extra = nil, nil
	}
	return m
}
