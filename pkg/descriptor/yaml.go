package descriptor

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pluginform/pkg/model"
)

type formFile struct {
	Name    string      `yaml:"name"`
	Title   string      `yaml:"title"`
	Section string      `yaml:"section"`
	Fields  []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	ID          string       `yaml:"id"`
	Label       string       `yaml:"label"`
	Category    string       `yaml:"category"`
	Span        int          `yaml:"span"`
	MinRows     int          `yaml:"minRows"`
	Default     any          `yaml:"default"`
	Options     []optionFile `yaml:"options"`
	OptionsFrom string       `yaml:"optionsFrom"`
}

// optionFile is either a plain scalar or a {label, option, value} mapping.
type optionFile struct {
	plain     string
	checkable bool
	label     string
	option    *int
	value     any
}

func (o *optionFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.plain = node.Value
		return nil
	}
	var raw struct {
		Label  string `yaml:"label"`
		Option *int   `yaml:"option"`
		Value  any    `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	o.checkable = true
	o.label = raw.Label
	o.option = raw.Option
	o.value = raw.Value
	return nil
}

// FromYAML parses a YAML (or JSON) form definition.
func FromYAML(data []byte, opts ...Option) (Form, error) {
	o := resolveOptions(opts)
	if strings.TrimSpace(string(data)) == "" {
		return Form{}, fmt.Errorf("%w: empty definition", ErrInvalidForm)
	}
	var file formFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Form{}, fmt.Errorf("descriptor: parse yaml: %w", err)
	}

	form := Form{
		Name:    strings.TrimSpace(file.Name),
		Title:   SanitizeLabel(file.Title),
		Section: strings.TrimSpace(file.Section),
		Items:   make([]model.FieldDescriptor, 0, len(file.Fields)),
	}
	for _, field := range file.Fields {
		item, err := field.descriptor(o)
		if err != nil {
			return Form{}, err
		}
		form.Items = append(form.Items, item)
	}
	if err := validate(form); err != nil {
		return Form{}, err
	}
	o.logger.Debug("loaded form definition",
		zap.String("form", form.Name),
		zap.Int("fields", len(form.Items)),
	)
	return form, nil
}

// LoadFile reads a YAML form definition from path.
func LoadFile(path string, opts ...Option) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	form, err := FromYAML(data, opts...)
	if err != nil {
		return Form{}, fmt.Errorf("%s: %w", path, err)
	}
	return form, nil
}

func (f fieldFile) descriptor(o loadOptions) (model.FieldDescriptor, error) {
	item := model.FieldDescriptor{
		ID:           strings.TrimSpace(f.ID),
		Label:        SanitizeLabel(f.Label),
		DefaultValue: f.Default,
		Span:         f.Span,
		Category:     model.FieldCategory(strings.TrimSpace(f.Category)),
		MinRows:      f.MinRows,
	}
	if item.Span <= 0 {
		item.Span = DefaultSpan
	}
	if item.Category == "" {
		item.Category = model.CategoryText
	}

	if f.OptionsFrom != "" {
		options, err := resolveSource(o, f.OptionsFrom)
		if err != nil {
			return model.FieldDescriptor{}, fmt.Errorf("field %q: %w", item.ID, err)
		}
		item.Options = options
		return item, nil
	}

	options, err := convertOptions(f.Options)
	if err != nil {
		return model.FieldDescriptor{}, fmt.Errorf("field %q: %w", item.ID, err)
	}
	item.Options = sanitizeOptions(options)
	return item, nil
}

func convertOptions(options []optionFile) (model.OptionList, error) {
	if len(options) == 0 {
		return model.OptionList{}, nil
	}
	var (
		plain     []string
		checkable []model.CheckableOption
	)
	for i, opt := range options {
		if !opt.checkable {
			plain = append(plain, opt.plain)
			continue
		}
		number := i
		if opt.option != nil {
			number = *opt.option
		}
		checkable = append(checkable, model.CheckableOption{
			Label:  opt.label,
			Option: number,
			Value:  model.NormalizeValue(opt.value),
		})
	}
	if len(plain) > 0 && len(checkable) > 0 {
		return model.OptionList{}, fmt.Errorf("%w: mixed plain and checkable options", ErrInvalidForm)
	}
	if len(checkable) > 0 {
		return model.CheckableOptions(checkable...), nil
	}
	return model.StringOptions(plain...), nil
}

func resolveSource(o loadOptions, name string) (model.OptionList, error) {
	source, ok := o.sources[strings.TrimSpace(name)]
	if !ok {
		return model.OptionList{}, fmt.Errorf("%w: %q", ErrUnknownOptionSource, name)
	}
	options, err := source()
	if err != nil {
		return model.OptionList{}, fmt.Errorf("descriptor: option source %q: %w", name, err)
	}
	return sanitizeOptions(options), nil
}
