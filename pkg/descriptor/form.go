// Package descriptor loads form definitions: YAML files, OpenAPI component
// schemas and the built-in pingap forms. Labels are sanitized to plain text.
package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
)

var (
	// ErrInvalidForm is returned when a definition has missing or duplicate
	// identifiers or unknown categories.
	ErrInvalidForm = errors.New("descriptor: invalid form")
	// ErrUnknownForm is returned by Builtin for names it does not bundle.
	ErrUnknownForm = errors.New("descriptor: unknown form")
	// ErrUnknownOptionSource is returned when a field references an option
	// source nobody registered.
	ErrUnknownOptionSource = errors.New("descriptor: unknown option source")
)

// DefaultSpan is the layout span used when a field leaves it unset.
const DefaultSpan = 12

// Form is a named list of field descriptors. Section is the configuration
// table entries of this form are stored under.
type Form struct {
	Name    string
	Title   string
	Section string
	Items   []model.FieldDescriptor
}

// Field returns the descriptor with the given id.
func (f Form) Field(id string) (model.FieldDescriptor, bool) {
	for _, item := range f.Items {
		if item.ID == id {
			return item, true
		}
	}
	return model.FieldDescriptor{}, false
}

func validate(form Form) error {
	seen := make(map[string]struct{}, len(form.Items))
	for i, item := range form.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: field %d has no id", ErrInvalidForm, i)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidForm, item.ID)
		}
		seen[item.ID] = struct{}{}
		if !item.Category.Valid() {
			return fmt.Errorf("%w: field %q has unknown category %q", ErrInvalidForm, item.ID, item.Category)
		}
		if len(item.Options.Strings) > 0 && len(item.Options.Checkable) > 0 {
			return fmt.Errorf("%w: field %q mixes plain and checkable options", ErrInvalidForm, item.ID)
		}
	}
	return nil
}
