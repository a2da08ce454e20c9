package lagoonlog

import (
	"context"
	"io"
	"os"

	"github.com/rockbears/log"
	"github.com/sirupsen/logrus"

	"github.com/ovh/lagoonctl/sdk/log/hook"
)

// Conf contains log configuration
type Conf struct {
	Level               string
	Format              string
	NoColor             bool
	Output              io.Writer
	LagoonLogsAddr      string
	LagoonLogsNamespace string
	LagoonLogsExtra     map[string]interface{}
}

var lagoonLogsHook *hook.Hook

// Initialize init log level, format and hooks
func Initialize(ctx context.Context, conf *Conf) {
	switch conf.Level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "warning":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	out := conf.Output
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)

	switch conf.Format {
	case "discard":
		logrus.SetOutput(io.Discard)
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&LagoonFormatter{DisableColors: conf.NoColor})
	}

	if conf.LagoonLogsNamespace != "" {
		lagoonLogsHook = hook.NewHook(&hook.Config{
			Addr:      conf.LagoonLogsAddr,
			Namespace: conf.LagoonLogsNamespace,
		}, conf.LagoonLogsExtra)
		logrus.AddHook(lagoonLogsHook)
		log.Debug(ctx, "lagoon logs hook initialized for namespace %s", conf.LagoonLogsNamespace)

		go func() {
			<-ctx.Done()
			lagoonLogsHook.Flush()
		}()
	}
}

// Flush sends buffered entries of the Lagoon Logs hook, if any.
func Flush() {
	if lagoonLogsHook != nil {
		lagoonLogsHook.Flush()
	}
}

// Send writes a single message to Lagoon Logs, outside of the logrus pipeline.
func Send(ctx context.Context, addr string, m *hook.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if addr == "" {
		addr = hook.DefaultAddr
	}
	w := hook.NewUDPWriter(addr)
	defer w.Close()
	log.Debug(ctx, "sending lagoon logs message to %s", addr)
	return w.WriteMessage(m)
}
