package inventory

import (
	"regexp"
	"strings"

	"github.com/ovh/lagoonctl/sdk"
)

// Filter represent a filter on project metadata
type Filter struct {
	Key, Operator, Value string
}

// ParseFilter reads "key=value" (case insensitive equality) or "key~regexp".
func ParseFilter(s string) (Filter, error) {
	i := strings.IndexAny(s, "=~")
	if i <= 0 {
		return Filter{}, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid filter %q, expected key=value or key~regexp", s)
	}
	f := Filter{Key: s[:i], Operator: s[i : i+1], Value: s[i+1:]}
	if f.Operator == "~" {
		if _, err := regexp.Compile(f.Value); err != nil {
			return Filter{}, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid filter %q: %v", s, err)
		}
	}
	return f, nil
}

// Match checks if a key, value pair matches with the filter
func (f Filter) Match(k, v string) (bool, error) {
	switch f.Operator {
	case "=":
		return strings.EqualFold(k, f.Key) && strings.EqualFold(v, f.Value), nil
	case "~":
		if !strings.EqualFold(k, f.Key) {
			return false, nil
		}
		r, err := regexp.Compile(f.Value)
		if err != nil {
			return false, sdk.WithStack(err)
		}
		return r.MatchString(v), nil
	}
	return false, sdk.NewErrorFrom(sdk.ErrWrongRequest, "unsupported operator %s", f.Operator)
}

// MatchMetadata returns true when every filter matches one entry of md.
func MatchMetadata(md sdk.Metadata, filters []Filter) (bool, error) {
	for _, f := range filters {
		var matched bool
		for k, v := range md {
			ok, err := f.Match(k, v.String())
			if err != nil {
				return false, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}
