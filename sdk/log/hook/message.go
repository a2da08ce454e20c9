package hook

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultLoggerName is the logger_name of every message.
const DefaultLoggerName = "lagoon_ansible_collection"

// Message is a Lagoon Logs entry. The logs dispatcher only accepts one JSON
// document per UDP datagram.
type Message struct {
	Timestamp  string                 `json:"@timestamp"`
	LoggerName string                 `json:"logger_name"`
	Host       string                 `json:"host"`
	Message    string                 `json:"message"`
	Level      string                 `json:"level"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
	Type       string                 `json:"type,omitempty"`
}

// NewMessage returns a message stamped with the current time and hostname.
func NewMessage(level, msg string) *Message {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return &Message{
		Timestamp:  FormatTimestamp(time.Now()),
		LoggerName: DefaultLoggerName,
		Host:       host,
		Message:    msg,
		Level:      strings.ToUpper(strings.TrimSpace(level)),
	}
}

// Validate checks that a namespace is set when context or extra data is.
func (m *Message) Validate() error {
	if m.Type == "" && (len(m.Context) > 0 || len(m.Extra) > 0) {
		return fmt.Errorf("namespace is required when context or extra data is set")
	}
	return nil
}

// FormatTimestamp formats t in UTC with milliseconds, e.g. 2024-01-02T03:04:05.006Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
