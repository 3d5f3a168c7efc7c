package descriptor

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed forms/*.yaml
var builtinForms embed.FS

// BuiltinNames lists the bundled form definitions.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinForms, "forms")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)
	return names
}

// Builtin loads a bundled form by name ("plugin", "location", "upstream").
// Forms referencing the upstreams or plugins option sources need them
// registered through WithOptionSource.
func Builtin(name string, opts ...Option) (Form, error) {
	data, err := builtinForms.ReadFile("forms/" + name + ".yaml")
	if err != nil {
		return Form{}, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}
	return FromYAML(data, opts...)
}

// PluginForm is the built-in proxy plugin form.
func PluginForm(opts ...Option) (Form, error) {
	return Builtin("plugin", opts...)
}
