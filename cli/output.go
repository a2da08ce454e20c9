package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fsamin/go-dump"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"
)

// PrintGet displays a single item. The plain format flattens it to sorted
// "key value" lines.
func PrintGet(w io.Writer, i interface{}, format string, quiet bool, fields []string, verbose bool) error {
	switch format {
	case "json":
		return printJSON(w, i)
	case "yaml":
		return printYAML(w, i)
	}

	if isScalar(i) {
		fmt.Fprintln(w, i)
		return nil
	}

	if quiet {
		item := listItem(i, nil, true, nil, verbose, map[string]string{})
		fmt.Fprintln(w, item["key"])
		return nil
	}

	var m map[string]string
	if len(fields) > 0 || isCLITagged(i) {
		m = listItem(i, nil, false, fields, verbose, map[string]string{})
	}
	if m == nil {
		var err error
		m, err = dump.ToStringMap(i)
		if err != nil {
			return err
		}
	}

	itemKeys := make([]string, 0, len(m))
	for k := range m {
		itemKeys = append(itemKeys, k)
	}
	sort.Strings(itemKeys)

	tw := tabwriter.NewWriter(w, 10, 0, 1, ' ', 0)
	for _, k := range itemKeys {
		fmt.Fprintln(tw, k+"\t"+m[k])
	}
	return tw.Flush()
}

// PrintList displays a list of items as a table, or as json or yaml.
func PrintList(w io.Writer, s ListResult, format string, quiet bool, filters map[string]string, fields []string, verbose bool) error {
	tableHeader := []string{}
	tableData := [][]string{}
	var tableHeaderReady bool

	allResult := []map[string]string{}

	for _, i := range s {
		item := listItem(i, filters, quiet, fields, verbose, map[string]string{})
		if len(item) == 0 {
			continue
		}

		if quiet {
			fmt.Fprintln(w, item["key"])
			continue
		}

		allResult = append(allResult, item)

		if format == "" || format == "table" {
			itemKeys := make([]string, 0, len(item))
			for k := range item {
				itemKeys = append(itemKeys, k)
			}
			sort.Strings(itemKeys)

			itemData := make([]string, len(itemKeys))
			for j, k := range itemKeys {
				if !tableHeaderReady {
					tableHeader = append(tableHeader, strings.ToTitle(k))
				}
				itemData[j] = item[k]
			}
			tableHeaderReady = true
			tableData = append(tableData, itemData)
		}
	}

	if quiet {
		return nil
	}

	switch format {
	case "json":
		return printJSON(w, allResult)
	case "yaml":
		return printYAML(w, allResult)
	}
	if len(tableData) == 0 {
		fmt.Fprintln(w, "nothing to display...")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(tableHeader)
	table.AppendBulk(tableData)
	table.Render()
	return nil
}

func printJSON(w io.Writer, i interface{}) error {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}

func printYAML(w io.Writer, i interface{}) error {
	b, err := yaml.Marshal(i)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(b))
	return nil
}

func isScalar(i interface{}) bool {
	if i == nil {
		return true
	}
	switch reflect.TypeOf(i).Kind() {
	case reflect.Ptr, reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Interface:
		return false
	}
	return true
}

// isCLITagged returns true when i is a struct with at least one cli tag.
func isCLITagged(i interface{}) bool {
	t := reflect.TypeOf(i)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for j := 0; j < t.NumField(); j++ {
		if t.Field(j).Tag.Get("cli") != "" {
			return true
		}
	}
	return false
}

// listItem flattens the cli tagged fields of a struct. Fields without tag are
// only shown in verbose mode. A nil result means the item does not match filters.
func listItem(i interface{}, filters map[string]string, quiet bool, fields []string, verbose bool, res map[string]string) map[string]string {
	var s reflect.Value
	if reflect.ValueOf(i).Kind() == reflect.Ptr {
		s = reflect.ValueOf(i).Elem()
	} else {
		s = reflect.ValueOf(i)
	}

	if s.Kind() == reflect.Map {
		m, _ := dump.ToStringMap(i)
		return m
	}

	if s.Kind() != reflect.Struct {
		return map[string]string{"key": fmt.Sprintf("%v", i), "value": fmt.Sprintf("%v", i)}
	}

	t := s.Type()
	for j := 0; j < s.NumField(); j++ {
		f := s.Field(j)
		structField := t.Field(j)
		if !structField.IsExported() {
			continue
		}
		if f.Kind() == reflect.Ptr {
			if f.IsNil() {
				if structField.Anonymous {
					continue
				}
			} else {
				f = f.Elem()
			}
		}
		switch f.Kind() {
		case reflect.Array, reflect.Slice, reflect.Map:
			continue
		}
		if structField.Anonymous && f.Kind() == reflect.Struct {
			res = listItem(f.Interface(), filters, quiet, fields, verbose, res)
			if res == nil {
				return nil
			}
			continue
		}

		tag := structField.Tag.Get("cli")
		if tag == "-" {
			continue
		}
		var isKey bool
		if strings.HasSuffix(tag, ",key") {
			isKey = true
			tag = strings.TrimSuffix(tag, ",key")
		}
		if !verbose && tag == "" {
			continue
		}
		if tag == "" {
			tag = structField.Name
		}

		value := ""
		if f.IsValid() && !(f.Kind() == reflect.Ptr && f.IsNil()) {
			value = fmt.Sprintf("%v", f.Interface())
			if f.Kind() == reflect.Struct {
				if stringer, ok := f.Interface().(fmt.Stringer); ok {
					value = stringer.String()
				}
			}
		}

		// if there are filters and current tag value not match return nil item
		for k, v := range filters {
			if !strings.EqualFold(k, tag) {
				continue
			}
			if !strings.HasPrefix(v, "^") {
				v = "^" + v
			}
			if !strings.HasSuffix(v, "$") {
				v = v + "$"
			}
			matchValue, err := regexp.MatchString(v, value)
			if err != nil || !matchValue {
				return nil
			}
		}

		// if there are fields list, add only tag that match in result (ignore for quiet mode)
		if !quiet && len(fields) > 0 {
			var visible bool
			for _, ff := range fields {
				if strings.EqualFold(ff, tag) {
					visible = true
					break
				}
			}
			if !visible {
				continue
			}
		}

		if !quiet {
			res[tag] = value
		} else if isKey {
			res["key"] = value
		}
	}
	return res
}
