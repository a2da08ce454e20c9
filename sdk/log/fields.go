package lagoonlog

import (
	"context"

	"github.com/rockbears/log"
)

const (
	// If you add a field constant, don't forget to add it in the log.RegisterField below
	Action      = log.Field("action")
	Batch       = log.Field("batch")
	Endpoint    = log.Field("endpoint")
	Environment = log.Field("environment")
	Operation   = log.Field("operation")
	Project     = log.Field("project")
	Stacktrace  = log.Field("stack_trace")
)

func init() {
	log.RegisterField(
		Action,
		Batch,
		Endpoint,
		Environment,
		Operation,
		Project,
		Stacktrace,
	)
}

func ContextValue(ctx context.Context, f log.Field) string {
	i := ctx.Value(f)
	if i != nil {
		if s, ok := i.(string); ok {
			return s
		}
	}
	return ""
}
