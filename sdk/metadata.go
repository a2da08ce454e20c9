package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MetadataKind is the kind of value held by a MetadataValue.
type MetadataKind int

// Metadata kinds
const (
	MetadataNull MetadataKind = iota
	MetadataString
	MetadataNumber
	MetadataBool
	MetadataList
	MetadataMap
)

func (k MetadataKind) String() string {
	switch k {
	case MetadataString:
		return "string"
	case MetadataNumber:
		return "number"
	case MetadataBool:
		return "bool"
	case MetadataList:
		return "list"
	case MetadataMap:
		return "map"
	}
	return "null"
}

// MetadataValue is one value of a project metadata map.
//
// The API stores every value as a string. Values holding a JSON document are
// unpacked into the matching kind; Raw always keeps the stored string so a
// value can be compared or written back unchanged.
type MetadataValue struct {
	Kind   MetadataKind
	Str    string
	Number float64
	Bool   bool
	List   []MetadataValue
	Map    map[string]MetadataValue
	Raw    string
}

// NewMetadataValue unpacks a stored metadata string.
func NewMetadataValue(raw string) MetadataValue {
	var i interface{}
	if err := json.Unmarshal([]byte(raw), &i); err != nil {
		return MetadataValue{Kind: MetadataString, Str: raw, Raw: raw}
	}
	v := metadataValueFrom(i)
	v.Raw = raw
	return v
}

func metadataValueFrom(i interface{}) MetadataValue {
	switch t := i.(type) {
	case nil:
		return MetadataValue{Kind: MetadataNull, Raw: "null"}
	case string:
		return MetadataValue{Kind: MetadataString, Str: t, Raw: t}
	case float64:
		return MetadataValue{Kind: MetadataNumber, Number: t, Raw: strconv.FormatFloat(t, 'f', -1, 64)}
	case bool:
		return MetadataValue{Kind: MetadataBool, Bool: t, Raw: strconv.FormatBool(t)}
	case []interface{}:
		v := MetadataValue{Kind: MetadataList, List: make([]MetadataValue, len(t))}
		for j := range t {
			v.List[j] = metadataValueFrom(t[j])
		}
		btes, _ := json.Marshal(t)
		v.Raw = string(btes)
		return v
	case map[string]interface{}:
		v := MetadataValue{Kind: MetadataMap, Map: make(map[string]MetadataValue, len(t))}
		for k, e := range t {
			v.Map[k] = metadataValueFrom(e)
		}
		btes, _ := json.Marshal(t)
		v.Raw = string(btes)
		return v
	}
	s := fmt.Sprintf("%v", i)
	return MetadataValue{Kind: MetadataString, Str: s, Raw: s}
}

// Interface returns the value as plain Go types (string, float64, bool,
// []interface{}, map[string]interface{} or nil).
func (v MetadataValue) Interface() interface{} {
	switch v.Kind {
	case MetadataString:
		return v.Str
	case MetadataNumber:
		return v.Number
	case MetadataBool:
		return v.Bool
	case MetadataList:
		l := make([]interface{}, len(v.List))
		for i := range v.List {
			l[i] = v.List[i].Interface()
		}
		return l
	case MetadataMap:
		m := make(map[string]interface{}, len(v.Map))
		for k, e := range v.Map {
			m[k] = e.Interface()
		}
		return m
	}
	return nil
}

func (v MetadataValue) String() string {
	return v.Raw
}

// MarshalJSON encodes the stored string.
func (v MetadataValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw)
}

// UnmarshalJSON accepts a stored string or any JSON value.
func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = NewMetadataValue(s)
		return nil
	}
	var i interface{}
	if err := json.Unmarshal(data, &i); err != nil {
		return WrapError(err, "cannot unmarshal metadata value")
	}
	*v = metadataValueFrom(i)
	return nil
}

// MarshalYAML renders the unpacked value.
func (v MetadataValue) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

// Metadata is the open key/value map attached to a project.
type Metadata map[string]MetadataValue

// UnmarshalJSON accepts both an object and a JSON-encoded object string, the
// API returning the latter. A string that cannot be decoded leaves the map nil.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return WrapError(err, "cannot unmarshal metadata")
		}
		if s == "" {
			*m = Metadata{}
			return nil
		}
		data = []byte(s)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewErrorFrom(ErrInvalidData, "metadata is not a JSON object: %v", err)
	}
	res := make(Metadata, len(raw))
	for k, e := range raw {
		if s, ok := e.(string); ok {
			res[k] = NewMetadataValue(s)
			continue
		}
		res[k] = metadataValueFrom(e)
	}
	*m = res
	return nil
}

// Keys returns the sorted keys of the map.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Strings returns the stored string of every key.
func (m Metadata) Strings() map[string]string {
	res := make(map[string]string, len(m))
	for k, v := range m {
		res[k] = v.Raw
	}
	return res
}

// Unpacked returns the map with every value unpacked to plain Go types.
func (m Metadata) Unpacked() map[string]interface{} {
	res := make(map[string]interface{}, len(m))
	for k, v := range m {
		res[k] = v.Interface()
	}
	return res
}
