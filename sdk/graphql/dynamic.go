package graphql

import (
	"sort"

	"github.com/ovh/lagoonctl/sdk"
)

// SubFields selects fields one level below a top-level field, Type being the
// GraphQL type of that field.
type SubFields struct {
	Type   string   `json:"type" yaml:"type" mapstructure:"type"`
	Fields []string `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// DynamicQuery builds a query on the root field `query` returning mainType,
// e.g. projectByName(name: "foo") { id name kubernetes { id name } }.
// The schema is not fetched so field names are sent as given.
func DynamicQuery(query, mainType string, args map[string]interface{}, fields []string, subFields map[string]SubFields) (*Document, error) {
	if query == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "query name is required")
	}
	if len(fields) == 0 && len(subFields) == 0 {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "one of fields or subfields is required to query %s", mainType)
	}
	f := NewField(query).WithArgs(args).SelectFields(fields...)

	names := make([]string, 0, len(subFields))
	for n := range subFields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		sf := subFields[n]
		if len(sf.Fields) == 0 {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no fields given for %s.%s", mainType, n)
		}
		f.Select(NewField(n).SelectFields(sf.Fields...))
	}
	return Query(f), nil
}

// DynamicMutation builds a mutation calling `mutation` with `input` as its
// sole argument. selectType is only used to require subfields when set.
func DynamicMutation(mutation string, input map[string]interface{}, selectType string, subfields []string) (*Document, error) {
	if mutation == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "mutation name is required")
	}
	if len(input) == 0 {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "input arguments are required for mutations")
	}
	if selectType != "" && len(subfields) == 0 {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "subfields are required if selectType is set")
	}
	f := NewField(mutation).WithArg("input", input).SelectFields(subfields...)
	return Mutation(f), nil
}
