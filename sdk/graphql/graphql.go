// Package graphql builds GraphQL documents at runtime: operations, aliased
// fields with arguments, inline fragments and named fragments.
package graphql

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/ovh/lagoonctl/sdk"
)

// Selection is an element of a selection set.
type Selection interface {
	write(b *strings.Builder, depth int)
}

// Enum is an argument value printed bare, e.g. PROJECT.
type Enum string

// Variable is an argument value referencing an operation variable, printed $name.
type Variable string

// Argument is a named argument of a field.
type Argument struct {
	Name  string
	Value interface{}
}

// Field is a selected field, optionally aliased, with arguments and a
// sub-selection.
type Field struct {
	Name      string
	Alias     string
	Arguments []Argument
	Selection []Selection
}

// NewField returns a field selecting the given sub-fields.
func NewField(name string, sel ...Selection) *Field {
	return &Field{Name: name, Selection: sel}
}

// Fields returns scalar selections.
func Fields(names ...string) []Selection {
	res := make([]Selection, len(names))
	for i, n := range names {
		res[i] = &Field{Name: n}
	}
	return res
}

// WithAlias sets the alias of f.
func (f *Field) WithAlias(alias string) *Field {
	f.Alias = alias
	return f
}

// WithArg appends an argument to f.
func (f *Field) WithArg(name string, value interface{}) *Field {
	f.Arguments = append(f.Arguments, Argument{Name: name, Value: value})
	return f
}

// WithArgs appends the arguments of m, sorted by name.
func (f *Field) WithArgs(m map[string]interface{}) *Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.WithArg(k, m[k])
	}
	return f
}

// Select appends selections to f.
func (f *Field) Select(sel ...Selection) *Field {
	f.Selection = append(f.Selection, sel...)
	return f
}

// SelectFields appends scalar selections to f.
func (f *Field) SelectFields(names ...string) *Field {
	return f.Select(Fields(names...)...)
}

// Copy returns a deep copy of the field, so that a template can be aliased
// many times within a document.
func (f *Field) Copy() *Field {
	c := &Field{Name: f.Name, Alias: f.Alias}
	c.Arguments = append(c.Arguments, f.Arguments...)
	c.Selection = copySelection(f.Selection)
	return c
}

func copySelection(sel []Selection) []Selection {
	if sel == nil {
		return nil
	}
	res := make([]Selection, len(sel))
	for i, s := range sel {
		switch t := s.(type) {
		case *Field:
			res[i] = t.Copy()
		case *InlineFragment:
			res[i] = &InlineFragment{On: t.On, Selection: copySelection(t.Selection)}
		default:
			res[i] = s
		}
	}
	return res
}

func (f *Field) write(b *strings.Builder, depth int) {
	indent(b, depth)
	if f.Alias != "" && f.Alias != f.Name {
		b.WriteString(f.Alias)
		b.WriteString(": ")
	}
	b.WriteString(f.Name)
	if len(f.Arguments) > 0 {
		b.WriteByte('(')
		for i, a := range f.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			b.WriteString(FormatValue(a.Value))
		}
		b.WriteByte(')')
	}
	writeSelectionSet(b, f.Selection, depth)
	b.WriteByte('\n')
}

// InlineFragment selects fields on a concrete type, e.g. `... on Foo { bar }`.
type InlineFragment struct {
	On        string
	Selection []Selection
}

// On returns an inline fragment on typ.
func On(typ string, sel ...Selection) *InlineFragment {
	return &InlineFragment{On: typ, Selection: sel}
}

func (f *InlineFragment) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString("... on ")
	b.WriteString(f.On)
	writeSelectionSet(b, f.Selection, depth)
	b.WriteByte('\n')
}

// Fragment is a named fragment definition.
type Fragment struct {
	Name      string
	On        string
	Selection []Selection
}

// Spread returns the spread of the fragment.
func (f *Fragment) Spread() Selection {
	return fragmentSpread(f.Name)
}

type fragmentSpread string

func (s fragmentSpread) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString("...")
	b.WriteString(string(s))
	b.WriteByte('\n')
}

// VariableDefinition declares an operation variable, e.g. $id: Int!.
type VariableDefinition struct {
	Name string
	Type string
}

// Operation is a query or a mutation.
type Operation struct {
	Type      string
	Name      string
	Variables []VariableDefinition
	Selection []Selection
}

// Document is a printable GraphQL document.
type Document struct {
	Operations []*Operation
	Fragments  []*Fragment
}

// Query returns a document holding one anonymous query.
func Query(sel ...Selection) *Document {
	return &Document{Operations: []*Operation{{Type: "query", Selection: sel}}}
}

// Mutation returns a document holding one anonymous mutation.
func Mutation(sel ...Selection) *Document {
	return &Document{Operations: []*Operation{{Type: "mutation", Selection: sel}}}
}

// Named sets the name of the first operation.
func (d *Document) Named(name string) *Document {
	if len(d.Operations) > 0 {
		d.Operations[0].Name = name
	}
	return d
}

// WithVariable declares a variable on the first operation.
func (d *Document) WithVariable(name, typ string) *Document {
	if len(d.Operations) > 0 {
		d.Operations[0].Variables = append(d.Operations[0].Variables, VariableDefinition{Name: name, Type: typ})
	}
	return d
}

// WithFragment adds a named fragment definition.
func (d *Document) WithFragment(f *Fragment) *Document {
	d.Fragments = append(d.Fragments, f)
	return d
}

// Validate checks that the document can be sent.
func (d *Document) Validate() error {
	if d == nil || len(d.Operations) == 0 {
		return sdk.NewErrorFrom(sdk.ErrWrongRequest, "empty GraphQL document")
	}
	for _, o := range d.Operations {
		if len(o.Selection) == 0 {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "%s %s has no selection", o.Type, o.Name)
		}
		if o.Type != "query" && o.Type != "mutation" {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "unsupported operation type %q", o.Type)
		}
	}
	for _, f := range d.Fragments {
		if len(f.Selection) == 0 {
			return sdk.NewErrorFrom(sdk.ErrWrongRequest, "fragment %s has no selection", f.Name)
		}
	}
	return nil
}

func (d *Document) String() string {
	var b strings.Builder
	for i, o := range d.Operations {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(o.Type)
		if o.Name != "" {
			b.WriteByte(' ')
			b.WriteString(o.Name)
		}
		if len(o.Variables) > 0 {
			b.WriteByte('(')
			for j, v := range o.Variables {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "$%s: %s", v.Name, v.Type)
			}
			b.WriteByte(')')
		}
		writeSelectionSet(&b, o.Selection, 0)
		b.WriteByte('\n')
	}
	for _, f := range d.Fragments {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "fragment %s on %s", f.Name, f.On)
		writeSelectionSet(&b, f.Selection, 0)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeSelectionSet(b *strings.Builder, sel []Selection, depth int) {
	if len(sel) == 0 {
		return
	}
	b.WriteString(" {\n")
	for _, s := range sel {
		s.write(b, depth+1)
	}
	indent(b, depth)
	b.WriteByte('}')
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

// FormatValue prints v as a GraphQL literal. Maps print as input objects
// with sorted keys; structs are printed through their JSON encoding.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Enum:
		return string(t)
	case Variable:
		return "$" + string(t)
	case string:
		return quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case map[string]interface{}:
		return formatObject(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i := range t {
			parts[i] = FormatValue(t[i])
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
		return FormatValue(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Map:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprintf("%v", iter.Key().Interface())] = iter.Value().Interface()
		}
		return formatObject(m)
	case reflect.Struct:
		btes, err := json.Marshal(v)
		if err != nil {
			return quote(fmt.Sprintf("%v", v))
		}
		var m map[string]interface{}
		if err := json.Unmarshal(btes, &m); err != nil {
			return quote(string(btes))
		}
		return formatObject(m)
	}
	return quote(fmt.Sprintf("%v", v))
}

func formatObject(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + FormatValue(m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// GraphQL string escaping is a subset of JSON's.
func quote(s string) string {
	btes, _ := json.Marshal(s)
	return string(btes)
}
