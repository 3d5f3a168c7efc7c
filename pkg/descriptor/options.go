package descriptor

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

// OptionSource supplies options resolved when a form is loaded, such as the
// names of configured upstreams.
type OptionSource func() (model.OptionList, error)

// PluginCategoriesSource is always registered and lists the plugin
// categories.
const PluginCategoriesSource = "plugin-categories"

// Option configures loading.
type Option func(*loadOptions)

type loadOptions struct {
	logger  *zap.Logger
	sources map[string]OptionSource
}

// WithLogger sets the logger used while loading.
func WithLogger(logger *zap.Logger) Option {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOptionSource registers a named option source referenced by
// optionsFrom in YAML or by the options key of the OpenAPI extension.
func WithOptionSource(name string, source OptionSource) Option {
	return func(o *loadOptions) {
		if name != "" && source != nil {
			o.sources[name] = source
		}
	}
}

func resolveOptions(opts []Option) loadOptions {
	o := loadOptions{
		logger: zap.NewNop(),
		sources: map[string]OptionSource{
			PluginCategoriesSource: func() (model.OptionList, error) {
				return plugin.CategoryOptions(), nil
			},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
