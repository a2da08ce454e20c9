package hook

import (
	"encoding/json"
	"net"
	"sync"
	"time"
)

// Writer sends messages to Lagoon Logs.
type Writer interface {
	WriteMessage(*Message) error
}

// UDPWriter writes newline terminated JSON messages on a UDP socket.
type UDPWriter struct {
	mu   sync.Mutex
	addr string
	conn net.Conn
}

// NewUDPWriter returns a writer for addr. The socket is opened on first write.
func NewUDPWriter(addr string) *UDPWriter {
	return &UDPWriter{addr: addr}
}

// WriteMessage sends m in a single datagram.
func (w *UDPWriter) WriteMessage(m *Message) error {
	btes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	btes = append(btes, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		conn, err := net.DialTimeout("udp", w.addr, 5*time.Second)
		if err != nil {
			return err
		}
		w.conn = conn
	}
	if _, err := w.conn.Write(btes); err != nil {
		_ = w.conn.Close()
		w.conn = nil
		return err
	}
	return nil
}

// Close closes the socket.
func (w *UDPWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}
