package model

import (
	"fmt"
	"strconv"
)

// FormState maps field identifiers to their current values. Values are one of
// string, float64, bool, nil or []string.
type FormState map[string]any

// ResolveDefaults seeds a FormState from the descriptors' default values.
func ResolveDefaults(items []FieldDescriptor) FormState {
	state := make(FormState, len(items))
	for _, item := range items {
		state[item.ID] = NormalizeValue(item.DefaultValue)
	}
	return state
}

// NormalizeValue turns empty strings into nil and copies list values so the
// state never aliases caller-owned slices.
func NormalizeValue(value any) any {
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return nil
		}
		return typed
	case []string:
		return append([]string{}, typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, v := range typed {
			out = append(out, stringify(v))
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return typed
	}
}

// Clone returns a copy safe to hand to collaborators.
func (s FormState) Clone() FormState {
	out := make(FormState, len(s))
	for k, v := range s {
		if list, ok := v.([]string); ok {
			out[k] = append([]string{}, list...)
			continue
		}
		out[k] = v
	}
	return out
}

// String returns the value for id as a string. Nil and missing values yield
// the empty string.
func (s FormState) String(id string) string {
	v, ok := s[id]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// Strings returns the list value for id, or nil.
func (s FormState) Strings(id string) []string {
	return StringList(s[id])
}

// StringList returns v as a string list, or nil when v is not a list.
func StringList(v any) []string {
	switch typed := v.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		return NormalizeValue(typed).([]string)
	default:
		return nil
	}
}

// Stringify formats a form value for display. Nil yields the empty string.
func Stringify(value any) string {
	return stringify(value)
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
