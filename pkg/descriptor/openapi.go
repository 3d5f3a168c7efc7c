package descriptor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Extension is the schema extension carrying form hints:
//
//	x-pluginform:
//	  category: plugin
//	  label: Value
//	  span: 6
//	  minRows: 3
//	  order: 2
//	  options: plugin-categories
const Extension = "x-pluginform"

// ErrUnsupportedSchema is returned for properties whose type cannot be mapped
// to a field category without an explicit extension.
var ErrUnsupportedSchema = errors.New("descriptor: unsupported schema")

type property struct {
	name  string
	order int
	item  model.FieldDescriptor
}

// FromOpenAPI builds a form from the component schema named schema. Every
// property becomes a field; the x-pluginform extension overrides what is
// inferred from the property type.
func FromOpenAPI(ctx context.Context, data []byte, schema string, opts ...Option) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	o := resolveOptions(opts)

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Form{}, fmt.Errorf("descriptor: load openapi: %w", err)
	}
	if doc.Components == nil {
		return Form{}, fmt.Errorf("%w: document has no components", ErrUnknownForm)
	}
	ref, ok := doc.Components.Schemas[schema]
	if !ok || ref == nil || ref.Value == nil {
		return Form{}, fmt.Errorf("%w: schema %q", ErrUnknownForm, schema)
	}

	src := ref.Value
	properties := make([]property, 0, len(src.Properties))
	for name, prop := range src.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		p, err := convertProperty(o, name, prop.Value)
		if err != nil {
			return Form{}, fmt.Errorf("schema %q: %w", schema, err)
		}
		properties = append(properties, p)
	}
	sort.SliceStable(properties, func(i, j int) bool {
		if properties[i].order != properties[j].order {
			return properties[i].order < properties[j].order
		}
		return properties[i].name < properties[j].name
	})

	form := Form{
		Name:  schema,
		Title: SanitizeLabel(firstNonEmpty(src.Title, schema)),
		Items: make([]model.FieldDescriptor, 0, len(properties)),
	}
	if hints := extensionMap(src.Extensions); hints != nil {
		form.Section = stringValue(hints["section"])
	}
	for _, p := range properties {
		form.Items = append(form.Items, p.item)
	}
	if err := validate(form); err != nil {
		return Form{}, err
	}
	o.logger.Debug("loaded openapi form",
		zap.String("schema", schema),
		zap.Int("fields", len(form.Items)),
	)
	return form, nil
}

func convertProperty(o loadOptions, name string, schema *openapi3.Schema) (property, error) {
	hints := extensionMap(schema.Extensions)
	item := model.FieldDescriptor{
		ID:           name,
		Label:        SanitizeLabel(firstNonEmpty(stringValue(hints["label"]), schema.Title, name)),
		DefaultValue: schema.Default,
		Span:         intValue(hints["span"]),
		MinRows:      intValue(hints["minRows"]),
		Category:     model.FieldCategory(stringValue(hints["category"])),
	}
	if item.Span <= 0 {
		item.Span = DefaultSpan
	}

	switch source := hints["options"].(type) {
	case string:
		options, err := resolveSource(o, source)
		if err != nil {
			return property{}, fmt.Errorf("property %q: %w", name, err)
		}
		item.Options = options
	case []any:
		item.Options = sanitizeOptions(optionsFromList(source))
	default:
		item.Options = enumOptions(schema)
	}

	if item.Category == "" {
		category, options, err := inferCategory(schema)
		if err != nil {
			return property{}, fmt.Errorf("property %q: %w", name, err)
		}
		item.Category = category
		if item.Options.Empty() {
			item.Options = options
		}
	}

	order, ok := hints["order"]
	if !ok {
		return property{name: name, order: int(^uint(0) >> 1), item: item}, nil
	}
	return property{name: name, order: intValue(order), item: item}, nil
}

func inferCategory(schema *openapi3.Schema) (model.FieldCategory, model.OptionList, error) {
	switch {
	case schema.Type == nil:
		return model.CategoryText, model.OptionList{}, nil
	case schema.Type.Is(openapi3.TypeInteger), schema.Type.Is(openapi3.TypeNumber):
		return model.CategoryNumber, model.OptionList{}, nil
	case schema.Type.Is(openapi3.TypeBoolean):
		return model.CategoryCheckbox, model.CheckableOptions(
			model.CheckableOption{Label: "Yes", Option: 1, Value: true},
			model.CheckableOption{Label: "No", Option: 0, Value: false},
		), nil
	case schema.Type.Is(openapi3.TypeString):
		if len(schema.Enum) > 0 {
			return model.CategorySelect, model.OptionList{}, nil
		}
		return model.CategoryText, model.OptionList{}, nil
	default:
		return "", model.OptionList{}, fmt.Errorf("%w: type %v needs %s.category", ErrUnsupportedSchema, schema.Type.Slice(), Extension)
	}
}

func enumOptions(schema *openapi3.Schema) model.OptionList {
	enum := schema.Enum
	if len(enum) == 0 && schema.Items != nil && schema.Items.Value != nil {
		enum = schema.Items.Value.Enum
	}
	if len(enum) == 0 {
		return model.OptionList{}
	}
	values := make([]string, 0, len(enum))
	for _, v := range enum {
		values = append(values, stringValue(v))
	}
	return model.StringOptions(values...)
}

func optionsFromList(list []any) model.OptionList {
	var (
		plain     []string
		checkable []model.CheckableOption
	)
	for i, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			plain = append(plain, stringValue(raw))
			continue
		}
		number := i
		if v, ok := entry["option"]; ok {
			number = intValue(v)
		}
		checkable = append(checkable, model.CheckableOption{
			Label:  stringValue(entry["label"]),
			Option: number,
			Value:  model.NormalizeValue(entry["value"]),
		})
	}
	if len(checkable) > 0 {
		return model.CheckableOptions(checkable...)
	}
	return model.StringOptions(plain...)
}

func extensionMap(extensions map[string]any) map[string]any {
	if len(extensions) == 0 {
		return nil
	}
	hints, _ := extensions[Extension].(map[string]any)
	return hints
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}

func intValue(v any) int {
	switch typed := v.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(typed))
		return n
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
