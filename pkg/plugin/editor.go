package plugin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"k8s.io/utils/ptr"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/pairs"
)

// Editor edits the sub-values of one plugin value and re-encodes the flat
// string after every change.
type Editor struct {
	category Category
	codec    codec
	logger   *zap.Logger
	values   Values
	onUpdate func(string)
	lists    map[string]*pairs.ListEditor
}

// NewEditor decodes flat for category c. onUpdate, when set, receives the
// re-encoded string after each successful edit.
func NewEditor(c Category, flat string, onUpdate func(string), opts ...Option) *Editor {
	o := resolveOptions(opts)
	logger := o.logger.With(zap.String("category", string(c)))
	entry := lookup(c)
	return &Editor{
		category: c,
		codec:    entry,
		logger:   logger,
		values:   entry.decode(flat, logger),
		onUpdate: onUpdate,
		lists:    make(map[string]*pairs.ListEditor),
	}
}

// Category reports the category the editor was built for.
func (e *Editor) Category() Category {
	return e.category
}

// Values returns the current sub-values.
func (e *Editor) Values() Values {
	return e.values
}

// SubFields lists the editable parts.
func (e *Editor) SubFields() []SubField {
	return append([]SubField(nil), e.codec.fields...)
}

// Descriptors renders the current sub-values as descriptors under parentID.
func (e *Editor) Descriptors(parentID string) []model.FieldDescriptor {
	return Descriptors(e.category, parentID, e.values)
}

// Encoded returns the flat string for the current sub-values.
func (e *Editor) Encoded() (string, error) {
	return e.codec.encode(e.values)
}

// Set edits a scalar sub-field and returns the new flat string. List
// sub-fields are edited through List.
func (e *Editor) Set(key, value string) (string, error) {
	field, ok := subField(e.category, key)
	if !ok {
		return "", fmt.Errorf("%w: %q for %s", ErrUnknownSubField, key, e.category)
	}
	if field.Kind == KindPairList {
		return "", fmt.Errorf("%w: %q is a list", ErrShapeMismatch, key)
	}

	switch v := e.values.(type) {
	case Raw:
		e.values = Raw(strings.TrimSpace(value))
	case Positional:
		idx, _ := strconv.Atoi(key)
		if idx >= len(v) {
			return "", fmt.Errorf("%w: %d", ErrSlotOutOfRange, idx)
		}
		slot, err := e.slotValue(field, value)
		if err != nil {
			return "", err
		}
		next := append(Positional(nil), v...)
		next[idx] = slot
		e.values = next
	case HeaderSet:
		next := v
		next.Remove = splitEntries(value)
		e.values = next
	case MockInfo:
		next := v
		switch key {
		case MockPathKey:
			next.Path = strings.TrimSpace(value)
		case MockStatusKey:
			next.Status = parseStatus(value)
		case MockDataKey:
			next.Data = value
		}
		e.values = next
	}
	return e.emit()
}

// SetSlot is Set for positional and raw layouts, addressed by slot index.
func (e *Editor) SetSlot(index int, value string) (string, error) {
	if e.codec.shape == ShapeRaw {
		if index != 0 {
			return "", fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
		}
		return e.Set(RawKey, value)
	}
	if e.codec.shape != ShapePositional {
		return "", fmt.Errorf("%w: %s has no slots", ErrShapeMismatch, e.category)
	}
	if index < 0 || index >= len(e.codec.fields) {
		return "", fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	return e.Set(strconv.Itoa(index), value)
}

// List returns the paired-list editor for a list sub-field (mock headers, set
// headers, add headers). Edits made through it re-encode the plugin value.
func (e *Editor) List(key string) (*pairs.ListEditor, error) {
	field, ok := subField(e.category, key)
	if !ok || field.Kind != KindPairList {
		return nil, fmt.Errorf("%w: %q is not a list of %s", ErrUnknownSubField, key, e.category)
	}
	if list, ok := e.lists[key]; ok {
		return list, nil
	}

	var seed []string
	switch v := e.values.(type) {
	case HeaderSet:
		if key == SetHeadersKey {
			seed = v.Set
		} else {
			seed = v.Add
		}
	case MockInfo:
		seed = v.Headers
	}

	list := pairs.NewListEditor(field.Delimiter, seed, func(entries []string) {
		e.applyList(key, entries)
	})
	e.lists[key] = list
	return list, nil
}

func (e *Editor) applyList(key string, entries []string) {
	switch v := e.values.(type) {
	case HeaderSet:
		next := v
		if key == SetHeadersKey {
			next.Set = entries
		} else {
			next.Add = entries
		}
		e.values = next
	case MockInfo:
		next := v
		next.Headers = entries
		e.values = next
	}
	if _, err := e.emit(); err != nil {
		e.logger.Warn("re-encode plugin value", zap.String("list", key), zap.Error(err))
	}
}

func (e *Editor) slotValue(field SubField, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	switch field.Kind {
	case KindSelect:
		if !field.Options.Contains(value) {
			return "", fmt.Errorf("%w: %q for %s", ErrInvalidOption, value, field.Label)
		}
	case KindNumber:
		if _, err := strconv.Atoi(value); err != nil {
			e.logger.Debug("dropping malformed numeric slot", zap.String("slot", field.Label), zap.String("value", value))
			return "", nil
		}
	}
	return value, nil
}

func (e *Editor) emit() (string, error) {
	flat, err := e.codec.encode(e.values)
	if err != nil {
		return "", err
	}
	if e.onUpdate != nil {
		e.onUpdate(flat)
	}
	return flat, nil
}

// parseStatus accepts integral values in [1, MaxInt32]. Anything else,
// including values that would overflow int, is treated as unset.
func parseStatus(raw string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return nil
	}
	return ptr.To(int(f))
}
