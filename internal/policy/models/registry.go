package models

import (
	"bytes"
	"encoding/json"
	"sort"

	dErrors "changepoint/pkg/domain-errors"
)

// Key names a registered policy.
type Key string

const (
	// KeyRequire96Tag makes at least one tag mandatory on change events.
	KeyRequire96Tag Key = "REQUIRE_96_TAG"
)

// Require96Tag is the value schema of REQUIRE_96_TAG.
type Require96Tag struct {
	Enabled *bool `json:"enabled"`
}

// Definition declares the value schema of a key.
type Definition struct {
	Key         Key
	Description string
	validate    func(raw json.RawMessage) error
}

var registry = map[Key]Definition{
	KeyRequire96Tag: {
		Key:         KeyRequire96Tag,
		Description: "Change events must carry at least one classification tag",
		validate: func(raw json.RawMessage) error {
			var v Require96Tag
			if err := decodeStrict(raw, &v); err != nil {
				return err
			}
			if v.Enabled == nil {
				return dErrors.New(dErrors.CodeValidation, "value.enabled is required")
			}
			return nil
		},
	},
}

func Lookup(key Key) (Definition, bool) {
	def, ok := registry[key]
	return def, ok
}

// Definitions lists registered keys in name order.
func Definitions() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DecodeRequire96Tag reads the enabled flag of a stored REQUIRE_96_TAG value.
func DecodeRequire96Tag(raw json.RawMessage) (bool, error) {
	var v Require96Tag
	if err := decodeStrict(raw, &v); err != nil {
		return false, err
	}
	return v.Enabled != nil && *v.Enabled, nil
}

func decodeStrict(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "value does not match the policy schema")
	}
	if dec.More() {
		return dErrors.New(dErrors.CodeValidation, "value does not match the policy schema")
	}
	return nil
}
