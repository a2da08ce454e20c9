package lagoonlog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLagoonFormatter(t *testing.T) {
	f := &LagoonFormatter{DisableColors: true}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "unable to fetch environments",
		Data:    logrus.Fields{"project": "foo", "batch": "1/2"},
	}
	btes, err := f.Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05 [WARN] [foo batch 1/2] unable to fetch environments\n", string(btes))

	entry = &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.ErrorLevel,
		Message: "deploy failed",
		Data: logrus.Fields{
			"environment": "foo-main",
			"project":     "foo",
			"operation":   "deploy",
			"action":      "deploy",
			"stack_trace": "main.go:12",
		},
	}
	btes, err = f.Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05 [ERROR] [foo/foo-main] deploy failed action=deploy operation=deploy\nmain.go:12\n", string(btes))

	entry.Data = logrus.Fields{}
	entry.Level = logrus.InfoLevel
	btes, err = f.Format(entry)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05 [INFO] deploy failed\n", string(btes))
}

func TestInitialize(t *testing.T) {
	buf := new(bytes.Buffer)
	Initialize(context.Background(), &Conf{Level: "debug", Format: "json", Output: buf})
	defer Initialize(context.Background(), &Conf{Level: "info"})

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestContextValue(t *testing.T) {
	ctx := context.WithValue(context.Background(), Project, "foo")
	assert.Equal(t, "foo", ContextValue(ctx, Project))
	assert.Equal(t, "", ContextValue(ctx, Environment))
}
