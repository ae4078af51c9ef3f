package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Fields is a validated request body. Required fields are present;
// extra fields pass through untouched for operation-specific use.
type Fields map[string]any

// Validate decodes a JSON request body and checks that every required
// field is present. All missing fields are reported together. An absent
// or null body fails before field checks; a body that is not a JSON
// object fails as invalid.
func Validate(raw []byte, required ...string) (Fields, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, NewValidationError("Missing Required JSON Body")
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, NewValidationError("Invalid JSON")
	}
	if decoded == nil {
		return nil, NewValidationError("Missing Required JSON Body")
	}
	body, ok := decoded.(map[string]any)
	if !ok {
		return nil, NewValidationError("Invalid JSON")
	}

	var missing []string
	for _, name := range required {
		if _, present := body[name]; !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, NewValidationError(
			"Missing Required Argument(s): [ " + strings.Join(missing, ", ") + " ]")
	}

	return Fields(body), nil
}

// String returns a required string field.
func (f Fields) String(name string) (string, error) {
	s, ok := f[name].(string)
	if !ok {
		return "", NewValidationError(fmt.Sprintf("Argument %s must be a string", name))
	}
	return s, nil
}

// StringOr returns an optional string field or the fallback when the
// field is absent.
func (f Fields) StringOr(name, fallback string) (string, error) {
	if _, present := f[name]; !present {
		return fallback, nil
	}
	return f.String(name)
}

// Int returns a required integral field. JSON numbers decode as
// float64; fractional values are rejected.
func (f Fields) Int(name string) (int, error) {
	n, ok := f[name].(float64)
	if !ok || n != math.Trunc(n) {
		return 0, NewValidationError(fmt.Sprintf("Argument %s must be an integer", name))
	}
	return int(n), nil
}

// FloatOr returns an optional numeric field or the fallback when the
// field is absent.
func (f Fields) FloatOr(name string, fallback float64) (float64, error) {
	v, present := f[name]
	if !present {
		return fallback, nil
	}
	n, ok := v.(float64)
	if !ok {
		return 0, NewValidationError(fmt.Sprintf("Argument %s must be a number", name))
	}
	return n, nil
}

// Bool returns a required boolean field.
func (f Fields) Bool(name string) (bool, error) {
	b, ok := f[name].(bool)
	if !ok {
		return false, NewValidationError(fmt.Sprintf("Argument %s must be a boolean", name))
	}
	return b, nil
}

// BoolOr returns an optional boolean field or the fallback when the
// field is absent.
func (f Fields) BoolOr(name string, fallback bool) (bool, error) {
	if _, present := f[name]; !present {
		return fallback, nil
	}
	return f.Bool(name)
}

// Map returns a required object-valued field.
func (f Fields) Map(name string) (map[string]any, error) {
	m, ok := f[name].(map[string]any)
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("Argument %s must be an object", name))
	}
	return m, nil
}

// RawJSON re-encodes an optional field as JSON, for strict per-kind
// decoding downstream. Absent fields return nil.
func (f Fields) RawJSON(name string) ([]byte, error) {
	v, present := f[name]
	if !present {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("Argument %s must be valid JSON", name))
	}
	return raw, nil
}
