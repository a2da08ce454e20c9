package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// ClusterKeys are the patch keys holding a cluster id while the current
// state holds a {id name} object.
var ClusterKeys = []string{"kubernetes", "openshift"}

// PatchRequired returns true when one of the values of patch differs from
// current, or is missing from it. Values are compared as strings, cluster
// keys by id.
func PatchRequired(current map[string]interface{}, patch map[string]interface{}, clusterKeys ...string) bool {
	for key, value := range patch {
		cur, ok := current[key]
		if !ok {
			return true
		}
		if isClusterKey(key, clusterKeys) {
			want, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(value)))
			if err != nil {
				return true
			}
			if clusterID(cur) != want {
				return true
			}
			continue
		}
		if stringValue(value) != stringValue(cur) {
			return true
		}
	}
	return false
}

func isClusterKey(key string, keys []string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func clusterID(v interface{}) int {
	switch t := v.(type) {
	case map[string]interface{}:
		return intValue(t["id"])
	default:
		return intValue(v)
	}
}

func intValue(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		i, _ := strconv.Atoi(t)
		return i
	}
	return 0
}

// JSON numbers are decoded as float64, print them without exponent
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		// the API exposes flags as 0/1 integers
		if t {
			return "1"
		}
		return "0"
	}
	return fmt.Sprint(v)
}
