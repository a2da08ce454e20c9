package lagoonlog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/rockbears/log"
	"github.com/sirupsen/logrus"
)

// LagoonFormatter prints one line per entry: time, level, the project,
// environment and batch the entry relates to, then the message and the other
// fields. A stack trace goes on the following lines.
type LagoonFormatter struct {
	DisableColors bool
}

var scopeFields = map[string]struct{}{
	string(Project):     {},
	string(Environment): {},
	string(Batch):       {},
}

// Format format a log
func (f *LagoonFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	level := strings.ToUpper(entry.Level.String())
	if entry.Level == logrus.WarnLevel {
		level = "WARN"
	}
	fmt.Fprintf(b, "%s %s", entry.Time.Format("2006-01-02 15:04:05"), f.colorize(levelColor(entry.Level), "["+level+"]"))

	if s := scope(entry.Data); s != "" {
		b.WriteString(" " + f.colorize(ansi.Cyan, "["+s+"]"))
	}
	b.WriteString(" " + entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if _, ok := scopeFields[k]; ok || k == "prefix" || k == string(Stacktrace) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%+v", f.colorize(ansi.LightBlack, k), entry.Data[k])
	}

	if st, ok := entry.Data[string(Stacktrace)]; ok {
		fmt.Fprintf(b, "\n%v", st)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *LagoonFormatter) colorize(color, s string) string {
	if f.DisableColors {
		return s
	}
	return color + s + ansi.Reset
}

func levelColor(l logrus.Level) string {
	switch l {
	case logrus.InfoLevel:
		return ansi.Green
	case logrus.WarnLevel:
		return ansi.Yellow
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return ansi.Red
	}
	return ansi.Blue
}

// scope renders project/environment and the batch, e.g. "foo/foo-main batch 1/2".
func scope(data logrus.Fields) string {
	var parts []string
	for _, k := range []log.Field{Project, Environment} {
		if v, ok := data[string(k)]; ok && fmt.Sprint(v) != "" {
			parts = append(parts, fmt.Sprint(v))
		}
	}
	s := strings.Join(parts, "/")
	if v, ok := data[string(Batch)]; ok && fmt.Sprint(v) != "" {
		if s != "" {
			s += " "
		}
		s += "batch " + fmt.Sprint(v)
	}
	return s
}
