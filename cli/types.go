package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// FlagType is the kind of value a flag holds.
type FlagType string

// Flag types
const (
	FlagString FlagType = "string"
	FlagBool   FlagType = "bool"
	FlagSlice  FlagType = "slice"
	FlagArray  FlagType = "array"
)

type Flag struct {
	Name      string
	ShortHand string
	Usage     string
	Default   string
	Type      FlagType
	IsValid   func(string) bool
}

// Values holds the args and flags of a command, keyed by name.
type Values map[string][]string

// GetString returns the first value of key.
func (v Values) GetString(key string) string {
	if len(v[key]) == 0 {
		return ""
	}
	return v[key][0]
}

// GetBool returns the first value of key as a boolean, false if not parsable.
func (v Values) GetBool(key string) bool {
	b, _ := strconv.ParseBool(v.GetString(key))
	return b
}

// GetInt returns the first value of key as an integer.
func (v Values) GetInt(key string) (int, error) {
	s := v.GetString(key)
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Error{Code: ErrWrongUsage.Code, Err: fmt.Errorf("invalid value %q for %s: expected an integer", s, key)}
	}
	return i, nil
}

// GetStringSlice returns the values of a FlagSlice flag.
func (v Values) GetStringSlice(key string) []string {
	s := v.GetString(key)
	if s == "" {
		return nil
	}
	return strings.Split(s, "||")
}

// GetStringArray returns every value of key.
func (v Values) GetStringArray(key string) []string {
	return v[key]
}

type Arg struct {
	Name    string
	IsValid func(string) bool
}

type Command struct {
	Name         string
	Aliases      []string
	Args         []Arg
	OptionalArgs []Arg
	VariadicArgs Arg
	Short        string
	Long         string
	Example      string
	Hidden       bool
	Flags        []Flag
	PreRun       func(c *Command, args *[]string) error
}

type CommandModifier func(*Command, interface{})

func CommandWithoutExtraFlags(c *Command, run interface{}) {}

func CommandWithExtraFlags(c *Command, run interface{}) {
	var extraFlags = []Flag{}
	switch run.(type) {
	case RunGetFunc:
		extraFlags = []Flag{
			{
				Name:    "format",
				Default: "plain",
				Usage:   "Output format: plain|json|yaml",
			},
			{
				Name:  "quiet",
				Type:  FlagBool,
				Usage: "Only display object's key",
			},
			{
				Name:    "fields",
				Default: "",
				Usage:   "Only display specified object fields",
			},
		}
	case RunListFunc:
		extraFlags = []Flag{
			{
				Name:    "filter",
				Default: "",
				Usage:   "Filter output based on conditions provided",
			},
			{
				Name:    "format",
				Default: "table",
				Usage:   "Output format: table|json|yaml",
			},
			{
				Name:      "quiet",
				ShortHand: "q",
				Type:      FlagBool,
				Usage:     "Only display object's key",
			},
			{
				Name:    "fields",
				Default: "",
				Usage:   "Only display specified object fields. 'empty' will display common fields, 'all' will display all object fields, 'field1,field2' to select multiple fields",
			},
		}
	case RunDeleteFunc:
		extraFlags = []Flag{
			{
				Name:  "force",
				Type:  FlagBool,
				Usage: "Do not ask for confirmation",
			},
		}
	}
	c.Flags = append(c.Flags, extraFlags...)
}

// CommandWithExtraAliases adds the usual aliases of list and delete commands.
func CommandWithExtraAliases(c *Command, run interface{}) {
	var extraAliases []string
	switch run.(type) {
	case RunListFunc:
		extraAliases = []string{"ls"}
	case RunDeleteFunc:
		extraAliases = []string{"rm", "remove", "del"}
	}
	for _, a := range extraAliases {
		if a != c.Name {
			c.Aliases = append(c.Aliases, a)
		}
	}
}

// CommandWithPreRun sets a function run before the args are checked.
func CommandWithPreRun(f func(c *Command, args *[]string) error) CommandModifier {
	return func(c *Command, _ interface{}) {
		c.PreRun = f
	}
}

var ErrWrongUsage = &Error{1, fmt.Errorf("Wrong usage")}

type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

type GetResult interface{}
type ListResult []interface{}

type RunFunc func(Values) error
type RunGetFunc func(Values) (GetResult, error)
type RunListFunc func(Values) (ListResult, error)
type RunDeleteFunc func(Values) error

func AsListResult(i interface{}) ListResult {
	s := reflect.ValueOf(i)
	if s.Kind() != reflect.Slice {
		panic("AsListResult() given a non-slice type")
	}

	res := ListResult{}
	for i := 0; i < s.Len(); i++ {
		v := s.Index(i).Interface()

		res = append(res, v)
	}

	return res
}
