package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ovh/lagoonctl/sdk"
)

// CMDB diff modes
const (
	CMDBModeStrict = "strict"
	CMDBModeKey    = "key"
)

const redacted = "****"

// Row is a variable record as stored in a CMDB or returned by Lagoon. Every
// row is identified by its "name" value.
type Row map[string]interface{}

// Name returns the "name" value of the row, "" if unset.
func (r Row) Name() string {
	if n, ok := r["name"]; ok && n != nil {
		return fmt.Sprint(n)
	}
	return ""
}

func (r Row) sensitive() bool {
	switch v := r["sensitive"].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	case nil:
		return false
	}
	return true
}

// CMDBOptions tunes CMDBDiff. Remove defaults to true.
type CMDBOptions struct {
	Mode   string   `mapstructure:"mode"`
	Keys   []string `mapstructure:"keys"`
	Ignore []string `mapstructure:"ignore"`
	Remove *bool    `mapstructure:"remove"`
}

// CMDBFacts is the result of CMDBDiff: the rows to write, the rows to
// remove and a human readable message per difference.
type CMDBFacts struct {
	Write       []Row    `json:"write"`
	Remove      []Row    `json:"remove"`
	DiffMessage []string `json:"diff_message"`
}

// CMDBDiff compares the desired rows (head) with the remote ones (base).
//
// A head row without a base row of the same name is written. A matching
// pair is compared on every value (strict mode) or on opts.Keys (key mode);
// booleans are compared as lowercase strings and "scope" case-insensitively.
// When they differ the head row is written. A head row of type json is left
// alone when the base value is valid JSON, and the base row is removed when it
// is not. Base rows missing from head are removed, unless opts.Remove is
// false or, when opts.Remove is unset, opts.Keys is set but empty. Rows named in opts.Ignore are skipped both ways.
//
// Both lists are deduplicated by name and a row written is never removed,
// the API updating variables in place.
func CMDBDiff(head, base []Row, opts CMDBOptions) (CMDBFacts, error) {
	facts := CMDBFacts{Write: []Row{}, Remove: []Row{}, DiffMessage: []string{}}

	mode := opts.Mode
	if mode == "" {
		mode = CMDBModeStrict
	}
	switch mode {
	case CMDBModeStrict:
	case CMDBModeKey:
		if len(opts.Keys) == 0 {
			return facts, sdk.NewErrorFrom(sdk.ErrWrongRequest, "diff mode %q requires keys", mode)
		}
	default:
		return facts, sdk.NewErrorFrom(sdk.ErrInvalidEnumValue, "unsupported diff mode %q", mode)
	}
	remove := opts.Keys == nil || len(opts.Keys) > 0
	if opts.Remove != nil {
		remove = *opts.Remove
	}
	ignored := make(map[string]struct{}, len(opts.Ignore))
	for _, n := range opts.Ignore {
		ignored[n] = struct{}{}
	}

	for _, h := range head {
		name := h.Name()
		if _, ok := ignored[name]; ok {
			continue
		}
		b, found := rowByName(base, name)
		if !found {
			facts.Write = append(facts.Write, h)
			facts.DiffMessage = append(facts.DiffMessage, "+ "+name)
			continue
		}

		if t, _ := h["type"].(string); t == "json" {
			if v, ok := b["value"].(string); ok {
				if json.Valid([]byte(v)) {
					continue
				}
				facts.Remove = append(facts.Remove, b)
				facts.DiffMessage = append(facts.DiffMessage, name+" is invalid JSON marking for write")
				continue
			}
		}

		if mode == CMDBModeKey {
			key, newVal, oldVal, differ := keyDiff(h, b, opts.Keys)
			if !differ {
				continue
			}
			if h.sensitive() {
				newVal, oldVal = redacted, redacted
			}
			facts.Write = append(facts.Write, h)
			facts.Remove = append(facts.Remove, b)
			facts.DiffMessage = append(facts.DiffMessage, fmt.Sprintf("%s: [%s] -%s +%s", name, key, oldVal, newVal))
			continue
		}

		if !strictEqual(h, b) {
			facts.Write = append(facts.Write, h)
			facts.Remove = append(facts.Remove, b)
		}
	}

	if remove {
		for _, b := range base {
			name := b.Name()
			if _, ok := ignored[name]; ok {
				continue
			}
			if _, found := rowByName(head, name); !found {
				facts.Remove = append(facts.Remove, b)
				facts.DiffMessage = append(facts.DiffMessage, "- "+name)
			}
		}
	}

	written := make(map[string]struct{}, len(facts.Write))
	for _, w := range facts.Write {
		written[w.Name()] = struct{}{}
	}
	pruned := facts.Remove[:0:0]
	for _, r := range facts.Remove {
		if _, ok := written[r.Name()]; !ok {
			pruned = append(pruned, r)
		}
	}
	facts.Write = dedupRows(facts.Write)
	facts.Remove = dedupRows(pruned)
	return facts, nil
}

func rowByName(rows []Row, name string) (Row, bool) {
	for _, r := range rows {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// keyDiff returns the first key whose values differ. A key missing on either
// side is a difference.
func keyDiff(head, base Row, keys []string) (key, newVal, oldVal string, differ bool) {
	for _, k := range keys {
		hv, hok := head[k]
		bv, bok := base[k]
		if !hok || !bok {
			return k, "", "", true
		}
		h, b := normalizeValue(hv), normalizeValue(bv)
		if k == "scope" {
			h, b = strings.ToLower(h), strings.ToLower(b)
		}
		if h != b {
			return k, fmt.Sprint(hv), fmt.Sprint(bv), true
		}
	}
	return "", "", "", false
}

func strictEqual(head, base Row) bool {
	if len(head) != len(base) {
		return false
	}
	for k, hv := range head {
		bv, ok := base[k]
		if !ok || normalizeValue(hv) != normalizeValue(bv) {
			return false
		}
	}
	return true
}

// Lagoon stores strings only while YAML turns unquoted true into a bool.
func normalizeValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	}
	return fmt.Sprint(v)
}

// dedupRows keeps the last row of each name at the position of the first.
func dedupRows(rows []Row) []Row {
	idx := make(map[string]int, len(rows))
	res := make([]Row, 0, len(rows))
	for _, r := range rows {
		n := r.Name()
		if i, ok := idx[n]; ok {
			res[i] = r
			continue
		}
		idx[n] = len(res)
		res = append(res, r)
	}
	return res
}
