package plugin

import (
	"strconv"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Kind is the editing widget of a sub-field.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindSelect
	KindPairList
	KindTextarea
)

// Sub-field keys for the non-positional layouts. Positional slots use their
// index ("0", "1", ...).
const (
	RawKey           = "value"
	MockPathKey      = "path"
	MockStatusKey    = "status"
	MockHeadersKey   = "headers"
	MockDataKey      = "data"
	SetHeadersKey    = "set_headers"
	AddHeadersKey    = "add_headers"
	RemoveHeadersKey = "remove_headers"
)

// SubField describes one editable part of a plugin value.
type SubField struct {
	Key       string
	Label     string
	Kind      Kind
	Options   model.OptionList
	Delimiter string
	MinRows   int
}

func slots(fields ...SubField) []SubField {
	for i := range fields {
		fields[i].Key = strconv.Itoa(i)
	}
	return fields
}

var (
	compressionFields = slots(
		SubField{Label: "Gzip Level", Kind: KindNumber},
		SubField{Label: "Br Level", Kind: KindNumber},
		SubField{Label: "Zstd Level", Kind: KindNumber},
	)
	adminFields = slots(
		SubField{Label: "Admin Path", Kind: KindText},
		SubField{Label: "Basic Auth", Kind: KindText},
	)
	limitFields = slots(
		SubField{Label: "Limit Category", Kind: KindSelect, Options: model.StringOptions("rate", "inflight")},
		SubField{Label: "Limit Value", Kind: KindNumber},
	)
	requestIDFields = slots(
		SubField{Label: "Algorithm", Kind: KindSelect, Options: model.StringOptions("uuid", "nanoid")},
		SubField{Label: "Length", Kind: KindNumber},
	)
	ipLimitFields = slots(
		SubField{Label: "IP List", Kind: KindText},
		SubField{Label: "Limit Mode", Kind: KindSelect, Options: model.CheckableOptions(
			model.CheckableOption{Label: "Allow", Option: 0, Value: "0"},
			model.CheckableOption{Label: "Deny", Option: 1, Value: "1"},
		)},
	)
	keyAuthFields = slots(
		SubField{Label: "Key Name", Kind: KindText},
		SubField{Label: "Key Values", Kind: KindText},
	)
	mockFields = []SubField{
		{Key: MockPathKey, Label: "Mock Path", Kind: KindText},
		{Key: MockStatusKey, Label: "Mock Status", Kind: KindNumber},
		{Key: MockHeadersKey, Label: "Mock Header", Kind: KindPairList, Delimiter: ":"},
		{Key: MockDataKey, Label: "Mock Data", Kind: KindTextarea, MinRows: 3},
	}
	responseHeaderFields = []SubField{
		{Key: SetHeadersKey, Label: "Set Header", Kind: KindPairList, Delimiter: ":"},
		{Key: AddHeadersKey, Label: "Add Header", Kind: KindPairList, Delimiter: ":"},
		{Key: RemoveHeadersKey, Label: "Remove Header", Kind: KindText},
	}
)

// SubFields returns the editable parts of category c in display order.
func SubFields(c Category) []SubField {
	return append([]SubField(nil), lookup(c).fields...)
}

func subField(c Category, key string) (SubField, bool) {
	for _, field := range lookup(c).fields {
		if field.Key == key {
			return field, true
		}
	}
	return SubField{}, false
}

var kindCategories = map[Kind]model.FieldCategory{
	KindText:     model.CategoryText,
	KindNumber:   model.CategoryNumber,
	KindSelect:   model.CategorySelect,
	KindPairList: model.CategoryHeaders,
	KindTextarea: model.CategoryTextarea,
}

// Descriptors renders the sub-fields of c as field descriptors scoped under
// parentID, seeded with the sub-values decoded from values.
func Descriptors(c Category, parentID string, values Values) []model.FieldDescriptor {
	fields := lookup(c).fields
	out := make([]model.FieldDescriptor, 0, len(fields))
	for _, field := range fields {
		out = append(out, model.FieldDescriptor{
			ID:           SubFieldID(parentID, c, field.Key),
			Label:        field.Label,
			DefaultValue: subValue(values, field.Key),
			Span:         12,
			Category:     kindCategories[field.Kind],
			MinRows:      field.MinRows,
			Options:      field.Options,
		})
	}
	return out
}

// SubFieldID builds the identifier of a sub-field descriptor.
func SubFieldID(parentID string, c Category, key string) string {
	return parentID + "-" + string(c) + "-" + key
}

func subValue(values Values, key string) any {
	switch v := values.(type) {
	case Raw:
		return string(v)
	case Positional:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil
		}
		return v.Slot(idx)
	case HeaderSet:
		switch key {
		case SetHeadersKey:
			return append([]string{}, v.Set...)
		case AddHeadersKey:
			return append([]string{}, v.Add...)
		case RemoveHeadersKey:
			return joinEntries(v.Remove)
		}
	case MockInfo:
		switch key {
		case MockPathKey:
			return v.Path
		case MockStatusKey:
			if v.Status == nil {
				return nil
			}
			return float64(*v.Status)
		case MockHeadersKey:
			return append([]string{}, v.Headers...)
		case MockDataKey:
			return v.Data
		}
	}
	return nil
}
