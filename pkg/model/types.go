package model

import "strings"

// FieldCategory selects how a field is edited and how its value is stored.
type FieldCategory string

const (
	CategoryText                 FieldCategory = "text"
	CategoryNumber               FieldCategory = "number"
	CategoryTextarea             FieldCategory = "textarea"
	CategoryLocation             FieldCategory = "location"
	CategoryUpstream             FieldCategory = "upstream"
	CategoryAddrs                FieldCategory = "addrs"
	CategoryCheckbox             FieldCategory = "checkbox"
	CategoryHeaders              FieldCategory = "headers"
	CategoryProxyAddHeaders      FieldCategory = "proxyAddHeaders"
	CategoryProxySetHeaders      FieldCategory = "proxySetHeaders"
	CategoryWebhookType          FieldCategory = "webhookType"
	CategoryWebhookNotifications FieldCategory = "webhookNotifications"
	CategoryPlugin               FieldCategory = "plugin"
	CategoryPluginStep           FieldCategory = "pluginStep"
	CategoryPluginSelect         FieldCategory = "pluginSelect"

	// CategorySelect is a single select over Options. Plugin sub-fields with
	// an enumerated slot use it.
	CategorySelect FieldCategory = "select"
)

// DefaultTextareaRows is used when a textarea descriptor leaves MinRows unset.
const DefaultTextareaRows = 4

// CategorySelectorID is the field whose value picks the active plugin
// category.
const CategorySelectorID = "category"

var knownCategories = map[FieldCategory]struct{}{
	CategoryText:                 {},
	CategoryNumber:               {},
	CategoryTextarea:             {},
	CategoryLocation:             {},
	CategoryUpstream:             {},
	CategoryAddrs:                {},
	CategoryCheckbox:             {},
	CategoryHeaders:              {},
	CategoryProxyAddHeaders:      {},
	CategoryProxySetHeaders:      {},
	CategoryWebhookType:          {},
	CategoryWebhookNotifications: {},
	CategoryPlugin:               {},
	CategoryPluginStep:           {},
	CategoryPluginSelect:         {},
	CategorySelect:               {},
}

// Valid reports whether c is one of the known field categories.
func (c FieldCategory) Valid() bool {
	_, ok := knownCategories[c]
	return ok
}

// PairDelimiter returns the separator used between name and value for
// paired-list categories. The second return is false for other categories.
func (c FieldCategory) PairDelimiter() (string, bool) {
	switch c {
	case CategoryAddrs:
		return " ", true
	case CategoryHeaders, CategoryProxyAddHeaders, CategoryProxySetHeaders:
		return ":", true
	default:
		return "", false
	}
}

// CheckableOption maps a discrete choice to a display label and a stored
// value distinct from the label.
type CheckableOption struct {
	Label  string `json:"label"`
	Option int    `json:"option"`
	Value  any    `json:"value"`
}

// OptionList holds either plain string options or checkable options. Only one
// of the two is expected to be populated.
type OptionList struct {
	Strings   []string          `json:"strings,omitempty"`
	Checkable []CheckableOption `json:"checkable,omitempty"`
}

// StringOptions builds an OptionList from plain values.
func StringOptions(values ...string) OptionList {
	return OptionList{Strings: append([]string(nil), values...)}
}

// CheckableOptions builds an OptionList from checkable options.
func CheckableOptions(options ...CheckableOption) OptionList {
	return OptionList{Checkable: append([]CheckableOption(nil), options...)}
}

// Empty reports whether the list carries no options.
func (o OptionList) Empty() bool {
	return len(o.Strings) == 0 && len(o.Checkable) == 0
}

// Labels returns the display labels in declaration order.
func (o OptionList) Labels() []string {
	if len(o.Checkable) > 0 {
		out := make([]string, len(o.Checkable))
		for i, opt := range o.Checkable {
			out[i] = opt.Label
		}
		return out
	}
	return append([]string(nil), o.Strings...)
}

// ValueStrings returns the stored values as strings in declaration order.
func (o OptionList) ValueStrings() []string {
	if len(o.Checkable) > 0 {
		out := make([]string, len(o.Checkable))
		for i, opt := range o.Checkable {
			out[i] = stringify(opt.Value)
		}
		return out
	}
	return append([]string(nil), o.Strings...)
}

// Contains reports whether value matches one of the stored option values.
func (o OptionList) Contains(value string) bool {
	for _, candidate := range o.ValueStrings() {
		if candidate == value {
			return true
		}
	}
	return false
}

// ByOption returns the checkable option with the given option number.
func (o OptionList) ByOption(option int) (CheckableOption, bool) {
	for _, opt := range o.Checkable {
		if opt.Option == option {
			return opt, true
		}
	}
	return CheckableOption{}, false
}

// OptionFor returns the option number whose value equals value, or 0 when
// nothing matches.
func (o OptionList) OptionFor(value any) int {
	for _, opt := range o.Checkable {
		if opt.Value == value {
			return opt.Option
		}
	}
	return 0
}

// FieldDescriptor declares one editable field. Identity is ID, unique within a
// form instance.
type FieldDescriptor struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	DefaultValue any           `json:"defaultValue,omitempty"`
	Span         int           `json:"span"`
	Category     FieldCategory `json:"category"`
	MinRows      int           `json:"minRows,omitempty"`
	Options      OptionList    `json:"options,omitempty"`

	// SubFields is only populated on derived views of plugin fields.
	SubFields []FieldDescriptor `json:"subFields,omitempty"`
}

// Rows returns MinRows, falling back to DefaultTextareaRows.
func (f FieldDescriptor) Rows() int {
	if f.MinRows > 0 {
		return f.MinRows
	}
	return DefaultTextareaRows
}

// DisplayLabel returns the label, falling back to the identifier.
func (f FieldDescriptor) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.ID
}
