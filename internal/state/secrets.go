package state

import (
	"encoding/json"
	"strings"

	"github.com/cuemby/dynia/internal/dynerr"
)

// forbiddenSubstrings are the case-insensitive key-name fragments that
// must never appear anywhere in the persisted document (spec §3
// invariant 6).
var forbiddenSubstrings = []string{
	"token", "key", "secret", "password", "auth", "credential",
}

// checkNoSecrets marshals the document to a generic JSON tree and walks
// every object key, rejecting the write if any key contains a forbidden
// substring. Marshaling to map[string]interface{} (rather than
// reflecting over the Go structs) catches fields added later without
// requiring this function to know the schema.
func checkNoSecrets(d *Document) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return &dynerr.IOFailure{Op: "marshal", Path: "<memory>", Cause: err}
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return &dynerr.IOFailure{Op: "unmarshal", Path: "<memory>", Cause: err}
	}

	return walkForSecrets(generic, "")
}

func walkForSecrets(v interface{}, path string) error {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			childPath := path + "." + k
			if containsForbidden(k) {
				return &dynerr.SecretLeak{Path: childPath}
			}
			if err := walkForSecrets(val, childPath); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, val := range t {
			if err := walkForSecrets(val, path+"[]"); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsForbidden(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range forbiddenSubstrings {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
