package plugin

import (
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Category identifies a proxy plugin kind. The string value is the name
// persisted by the backend.
type Category string

const (
	Stats           Category = "stats"
	Limit           Category = "limit"
	Compression     Category = "compression"
	Admin           Category = "admin"
	Directory       Category = "directory"
	Mock            Category = "mock"
	RequestID       Category = "request_id"
	IPLimit         Category = "ip_limit"
	KeyAuth         Category = "key_auth"
	BasicAuth       Category = "basic_auth"
	Cache           Category = "cache"
	RedirectHTTPS   Category = "redirect_https"
	Ping            Category = "ping"
	ResponseHeaders Category = "response_headers"
)

var categories = []Category{
	Stats,
	Limit,
	Compression,
	Admin,
	Directory,
	Mock,
	RequestID,
	IPLimit,
	KeyAuth,
	BasicAuth,
	Cache,
	RedirectHTTPS,
	Ping,
	ResponseHeaders,
}

// Categories lists every plugin category in declaration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches raw against the known categories.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.TrimSpace(raw))
	_, ok := codecs[c]
	return c, ok
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := codecs[c]
	return ok
}

// Key returns the camel-cased identifier used for labels, e.g. "requestId".
func (c Category) Key() string {
	if !c.Valid() {
		return ""
	}
	parts := strings.Split(string(c), "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// CategoryOptions returns the categories as select options.
func CategoryOptions() model.OptionList {
	values := make([]string, len(categories))
	for i, c := range categories {
		values[i] = string(c)
	}
	return model.StringOptions(values...)
}

// Step is the proxy phase a plugin runs in.
type Step string

const (
	StepRequest          Step = "request"
	StepProxyUpstream    Step = "proxy_upstream"
	StepUpstreamResponse Step = "upstream_response"
)

var stepOptions = []model.CheckableOption{
	{Label: "Request", Option: 0, Value: string(StepRequest)},
	{Label: "Proxy Upstream", Option: 1, Value: string(StepProxyUpstream)},
	{Label: "Upstream Response", Option: 2, Value: string(StepUpstreamResponse)},
}

var supportedSteps = map[Category][]int{
	Stats:           {0, 1},
	Limit:           {0, 1},
	Compression:     {0, 1},
	Admin:           {0, 1},
	Directory:       {0, 1},
	Mock:            {0, 1},
	RequestID:       {0, 1},
	IPLimit:         {0, 1},
	KeyAuth:         {0, 1},
	BasicAuth:       {0, 1},
	Cache:           {0},
	RedirectHTTPS:   {0},
	Ping:            {0},
	ResponseHeaders: {2},
}

// StepsFor returns the step options a category may run in. An empty category
// is treated as stats; unknown categories get every step.
func StepsFor(c Category) model.OptionList {
	if c == "" {
		c = Stats
	}
	allowed, ok := supportedSteps[c]
	if !ok {
		return model.CheckableOptions(stepOptions...)
	}
	out := make([]model.CheckableOption, 0, len(allowed))
	for _, opt := range stepOptions {
		for _, idx := range allowed {
			if opt.Option == idx {
				out = append(out, opt)
			}
		}
	}
	return model.CheckableOptions(out...)
}
