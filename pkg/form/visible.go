package form

import (
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

// VisibleFields derives the descriptors to present for s. Each descriptor's
// DefaultValue carries the current value. Step options follow the active
// category and plugin fields expose the sub-fields of that category.
func VisibleFields(items []model.FieldDescriptor, s State) []model.FieldDescriptor {
	out := make([]model.FieldDescriptor, 0, len(items))
	for _, item := range items {
		field := item
		field.DefaultValue = s.Values[item.ID]
		switch item.Category {
		case model.CategoryPluginStep:
			field.Options = plugin.StepsFor(s.Category)
		case model.CategoryPlugin:
			c := s.PluginCategory()
			field.SubFields = plugin.Descriptors(c, item.ID, plugin.Decode(c, s.Values.String(item.ID)))
		}
		out = append(out, field)
	}
	return out
}
