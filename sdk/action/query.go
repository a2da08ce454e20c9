package action

import (
	"context"
	"encoding/json"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
)

// QueryArgs are the arguments of the query action.
type QueryArgs struct {
	Query     string                       `mapstructure:"query" validate:"required"`
	MainType  string                       `mapstructure:"mainType"`
	Args      map[string]interface{}       `mapstructure:"args"`
	Fields    []string                     `mapstructure:"fields"`
	SubFields map[string]graphql.SubFields `mapstructure:"subFields"`
}

// RunQuery builds and runs a query on any root field.
func RunQuery(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a QueryArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	doc, err := graphql.DynamicQuery(a.Query, a.MainType, a.Args, a.Fields, a.SubFields)
	if err != nil {
		return res, err
	}
	log.Debug(ctx, "built query:\n%s", doc)

	raw, err := executeDynamic(ctx, c, doc, a.Query)
	if err != nil {
		return res, err
	}
	res.Result = raw
	return res, nil
}

// MutationArgs are the arguments of the mutation action.
type MutationArgs struct {
	Mutation   string                 `mapstructure:"mutation" validate:"required"`
	Arguments  map[string]interface{} `mapstructure:"arguments"`
	SelectType string                 `mapstructure:"selectType"`
	Subfields  []string               `mapstructure:"subfields"`
}

// RunMutation builds and runs a mutation taking a single input argument.
// The id of the returned object is selected unless subfields are given.
func RunMutation(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a MutationArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if a.Subfields == nil && a.SelectType == "" {
		a.Subfields = []string{"id"}
	}
	doc, err := graphql.DynamicMutation(a.Mutation, a.Arguments, a.SelectType, a.Subfields)
	if err != nil {
		return res, err
	}
	log.Debug(ctx, "built mutation:\n%s", doc)

	raw, err := executeDynamic(ctx, c, doc, a.Mutation)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = raw
	return res, nil
}

// executeDynamic runs doc and returns the decoded value of its root field.
// Errors returned alongside the field only produce a warning.
func executeDynamic(ctx context.Context, c lagoonclient.Interface, doc *graphql.Document, field string) (interface{}, error) {
	var data map[string]json.RawMessage
	errs, err := c.ExecuteDocument(ctx, doc, &data)
	if err != nil {
		return nil, err
	}
	raw, ok := data[field]
	if !ok {
		if len(errs) > 0 {
			return nil, sdk.NewError(sdk.ErrGraphQL, errs)
		}
		return nil, sdk.NewErrorFrom(sdk.ErrGraphQL, "%s returned nothing", field)
	}
	warnPartial(ctx, errs)

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", field, err)
	}
	return v, nil
}
