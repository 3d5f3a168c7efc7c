package descriptor

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pluginform/pkg/model"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// SanitizeLabel strips markup from a label and returns plain text.
func SanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := labelSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}

func sanitizeOptions(options model.OptionList) model.OptionList {
	if len(options.Checkable) > 0 {
		out := make([]model.CheckableOption, len(options.Checkable))
		for i, opt := range options.Checkable {
			opt.Label = SanitizeLabel(opt.Label)
			out[i] = opt
		}
		return model.CheckableOptions(out...)
	}
	return options
}
