package sdk

import (
	"regexp"
	"strconv"
)

var (
	aliasInvalidChars     = regexp.MustCompile(`[^0-9A-Za-z_]+`)
	namespaceInvalidChars = regexp.MustCompile(`[^0-9A-Za-z]+`)
)

// QueryAlias turns a resource name into a valid GraphQL alias: every run of
// characters outside [0-9A-Za-z_] becomes "_" and a leading digit is prefixed
// with "_". Distinct names can collide ("a-b" and "a.b"), see AliasSet.
func QueryAlias(name string) string {
	alias := aliasInvalidChars.ReplaceAllString(name, "_")
	if alias == "" || (alias[0] >= '0' && alias[0] <= '9') {
		alias = "_" + alias
	}
	return alias
}

// SanitizeNamespace replaces every run of non alphanumeric characters with "-".
func SanitizeNamespace(s string) string {
	return namespaceInvalidChars.ReplaceAllString(s, "-")
}

// NamespaceName returns the kubernetes namespace of the environment of a project.
func NamespaceName(project, environment string) string {
	return SanitizeNamespace(project + "-" + environment)
}

// AliasSet assigns unique aliases to names. A name whose alias is already
// taken by another name gets a numeric suffix.
type AliasSet struct {
	byAlias map[string]string
	byName  map[string]string
	order   []string
}

// NewAliasSet returns an AliasSet holding the aliases of names. Duplicated
// names share the same alias.
func NewAliasSet(names []string) *AliasSet {
	s := &AliasSet{
		byAlias: make(map[string]string, len(names)),
		byName:  make(map[string]string, len(names)),
	}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add registers name and returns its alias.
func (s *AliasSet) Add(name string) string {
	if a, ok := s.byName[name]; ok {
		return a
	}
	base := QueryAlias(name)
	alias := base
	for i := 2; ; i++ {
		if _, taken := s.byAlias[alias]; !taken {
			break
		}
		alias = base + "_" + strconv.Itoa(i)
	}
	s.byAlias[alias] = name
	s.byName[name] = alias
	s.order = append(s.order, alias)
	return alias
}

// Alias returns the alias of name.
func (s *AliasSet) Alias(name string) (string, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Name returns the name behind alias.
func (s *AliasSet) Name(alias string) (string, bool) {
	n, ok := s.byAlias[alias]
	return n, ok
}

// Aliases returns the aliases in insertion order.
func (s *AliasSet) Aliases() []string {
	return s.order
}

// Len returns the number of distinct names.
func (s *AliasSet) Len() int {
	return len(s.order)
}
