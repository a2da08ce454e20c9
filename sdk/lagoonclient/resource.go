package lagoonclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// BatchResult is the merged result of a batched query. Data holds one entry
// per requested name, nil when the API returned nothing for it. Errors are
// the partial errors of every batch. Err is set when a batch failed as a
// whole, in which case the following batches were not sent.
type BatchResult struct {
	Data   map[string]json.RawMessage
	Errors sdk.GraphQLErrors
	Err    error
}

// BatchQuery fetches the same selection for many names, e.g. every
// projectByName(name: $name) { environments { ... } }, sending
// ceil(len(names)/batchSize) sequential requests with one aliased field per
// name.
func (c *client) BatchQuery(ctx context.Context, root, argName string, names []string, selection []graphql.Selection, batchSize int) BatchResult {
	if batchSize <= 0 {
		batchSize = c.config.BatchSize
	}
	res := BatchResult{Data: make(map[string]json.RawMessage, len(names))}
	for _, n := range names {
		res.Data[n] = nil
	}
	if len(names) == 0 {
		return res
	}

	tmpl := graphql.NewField(root, selection...)
	nbBatches := (len(names) + batchSize - 1) / batchSize
	for b := 0; b < nbBatches; b++ {
		end := (b + 1) * batchSize
		if end > len(names) {
			end = len(names)
		}
		batch := names[b*batchSize : end]
		bctx := context.WithValue(ctx, lagoonlog.Batch, fmt.Sprintf("%d/%d", b+1, nbBatches))
		log.Debug(bctx, "fetching %s for batch %d/%d", root, b+1, nbBatches)

		aliases := sdk.NewAliasSet(nil)
		fields := make([]graphql.Selection, 0, len(batch))
		for _, n := range batch {
			if _, exists := aliases.Alias(n); exists {
				continue
			}
			fields = append(fields, tmpl.Copy().WithAlias(aliases.Add(n)).WithArg(argName, n))
		}

		var data map[string]json.RawMessage
		errs, err := c.ExecuteDocument(bctx, graphql.Query(fields...), &data)
		if err != nil {
			res.Err = err
			return res
		}
		res.Errors = append(res.Errors, errs...)
		if data == nil && len(errs) > 0 {
			res.Err = sdk.NewError(sdk.ErrGraphQL, errs)
			return res
		}

		for _, alias := range aliases.Aliases() {
			name, _ := aliases.Name(alias)
			if raw, ok := data[alias]; ok && !isNull(raw) {
				res.Data[name] = raw
			}
		}

		if c.config.ExitOnError && len(res.Errors) > 0 {
			res.Err = sdk.NewError(sdk.ErrPartialFailure, res.Errors)
			return res
		}
	}
	return res
}

// QueryTopLevel runs root(args) { fields } and returns the raw root value.
func (c *client) QueryTopLevel(ctx context.Context, root string, args map[string]interface{}, fields []string) (json.RawMessage, sdk.GraphQLErrors, error) {
	if len(fields) == 0 {
		return nil, nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no fields to select on %s", root)
	}
	doc := graphql.Query(graphql.NewField(root).WithArgs(args).SelectFields(fields...))
	var data map[string]json.RawMessage
	errs, err := c.ExecuteDocument(ctx, doc, &data)
	if err != nil {
		return nil, errs, err
	}
	raw, ok := data[root]
	if !ok || isNull(raw) {
		if len(errs) > 0 {
			return nil, errs, sdk.NewError(sdk.ErrGraphQL, fmt.Errorf("%s: %s", root, errs.Error()))
		}
		return nil, errs, nil
	}
	return raw, errs, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Option customizes a single accessor call.
type Option func(*options)

type options struct {
	fields    []string
	batchSize int
}

// Fields overrides the default fields selected by the call.
func Fields(fields ...string) Option {
	return func(o *options) {
		o.fields = fields
	}
}

// BatchSize overrides the number of names sent per request.
func BatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

func newOptions(defaultFields []string, defaultBatchSize int, opts ...Option) options {
	o := options{fields: defaultFields, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.fields) == 0 {
		o.fields = defaultFields
	}
	if o.batchSize <= 0 {
		o.batchSize = defaultBatchSize
	}
	return o
}

// withDeployTarget expands the deployTarget field into its sub-selection.
func withDeployTarget(fields []string) []graphql.Selection {
	sel := make([]graphql.Selection, 0, len(fields))
	for _, f := range fields {
		if f == "deployTarget" {
			sel = append(sel, graphql.NewField("deployTarget").SelectFields(sdk.ClusterFields...))
			continue
		}
		sel = append(sel, &graphql.Field{Name: f})
	}
	return sel
}

func deployTargetConfigFields() []string {
	fields := make([]string, 0, len(sdk.DeployTargetConfigFields)+1)
	fields = append(fields, sdk.DeployTargetConfigFields...)
	return append(fields, "deployTarget")
}
