package form_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

func pluginItems() []model.FieldDescriptor {
	return []model.FieldDescriptor{
		{ID: "category", Label: "Category", Category: model.CategorySelect, Options: plugin.CategoryOptions(), DefaultValue: "limit", Span: 6},
		{ID: "value", Label: "Value", Category: model.CategoryPlugin, DefaultValue: "rate 10", Span: 12},
		{ID: "step", Label: "Step", Category: model.CategoryPluginStep, DefaultValue: "request", Span: 6},
		{ID: "remark", Label: "Remark", Category: model.CategoryTextarea, DefaultValue: "", Span: 12},
	}
}

func TestNewStateResolvesDefaults(t *testing.T) {
	state := form.NewState(pluginItems())

	want := model.FormState{
		"category": "limit",
		"value":    "rate 10",
		"step":     "request",
		"remark":   nil,
	}
	if diff := cmp.Diff(want, state.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if state.Category != plugin.Limit {
		t.Fatalf("expected limit category, got %q", state.Category)
	}
	if state.Dirty || state.Processing {
		t.Fatalf("fresh state should be clean and idle: %+v", state)
	}
}

func TestReduceSetValueDoesNotMutateInput(t *testing.T) {
	before := form.NewState(pluginItems())
	after := form.Reduce(before, form.SetValue{ID: "remark", Value: "note"})

	if before.Values["remark"] != nil || before.Dirty {
		t.Fatalf("input state was modified: %+v", before)
	}
	if after.Values["remark"] != "note" || !after.Dirty {
		t.Fatalf("unexpected next state: %+v", after)
	}

	cleared := form.Reduce(after, form.SetValue{ID: "remark", Value: ""})
	if v, ok := cleared.Values["remark"]; !ok || v != nil {
		t.Fatalf("empty string should be stored as nil, got %#v", v)
	}
}

func TestReduceTracksCategory(t *testing.T) {
	state := form.Reduce(form.NewState(pluginItems()), form.SetValue{ID: "category", Value: "response_headers"})
	if state.Category != plugin.ResponseHeaders {
		t.Fatalf("expected response_headers, got %q", state.Category)
	}
	if state.Values["value"] != "rate 10" {
		t.Fatalf("plugin value must survive a category change, got %#v", state.Values["value"])
	}

	state = form.Reduce(state, form.SetValue{ID: "category", Value: ""})
	if state.Category != "" || state.PluginCategory() != plugin.Stats {
		t.Fatalf("empty category should fall back to stats, got %q", state.PluginCategory())
	}
}

func TestReduceEditClearsOnlySuccessNotice(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state := form.NewState(pluginItems())

	state = form.Reduce(state, form.ShowNotice{Notice: form.NewNotice(form.NoticeSuccess, "", now, time.Second)})
	state = form.Reduce(state, form.SetValue{ID: "remark", Value: "x"})
	if state.Notice.Kind != form.NoticeNone {
		t.Fatalf("edit should clear the success notice, got %v", state.Notice.Kind)
	}

	state = form.Reduce(state, form.ShowNotice{Notice: form.NewNotice(form.NoticeError, "boom", now, time.Second)})
	state = form.Reduce(state, form.SetValue{ID: "remark", Value: "y"})
	if state.Notice.Kind != form.NoticeError {
		t.Fatalf("edit should keep the error notice, got %v", state.Notice.Kind)
	}
}

func TestNoticeActive(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := form.NewNotice(form.NoticeSuccess, "", now, form.DefaultNoticeTTL)

	if !n.Active(now.Add(5 * time.Second)) {
		t.Fatalf("notice should be active before expiry")
	}
	if n.Active(now.Add(6 * time.Second)) {
		t.Fatalf("notice should expire after the ttl")
	}
	if (form.Notice{}).Active(now) {
		t.Fatalf("zero notice is never active")
	}
}

func TestVisibleFieldsFollowCategory(t *testing.T) {
	items := pluginItems()
	state := form.NewState(items)

	fields := form.VisibleFields(items, state)
	step := fields[2]
	if diff := cmp.Diff([]string{"request", "proxy_upstream"}, step.Options.ValueStrings()); diff != "" {
		t.Fatalf("step options mismatch (-want +got):\n%s", diff)
	}
	value := fields[1]
	var ids []string
	for _, sub := range value.SubFields {
		ids = append(ids, sub.ID)
	}
	if diff := cmp.Diff([]string{"value-limit-0", "value-limit-1"}, ids); diff != "" {
		t.Fatalf("sub-field ids mismatch (-want +got):\n%s", diff)
	}
	if value.SubFields[1].DefaultValue != "10" {
		t.Fatalf("sub-field should carry the decoded slot, got %#v", value.SubFields[1].DefaultValue)
	}

	state = form.Reduce(state, form.SetValue{ID: "category", Value: "response_headers"})
	fields = form.VisibleFields(items, state)
	if diff := cmp.Diff([]string{"upstream_response"}, fields[2].Options.ValueStrings()); diff != "" {
		t.Fatalf("step options mismatch (-want +got):\n%s", diff)
	}
	if len(fields[1].SubFields) != 3 {
		t.Fatalf("response headers expose three sub-fields, got %d", len(fields[1].SubFields))
	}
	if !items[2].Options.Empty() {
		t.Fatalf("source descriptors must not be modified")
	}
}

func TestFormatError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "name required", err: form.ErrNameRequired, want: "name is required"},
		{name: "display", err: displayErr{msg: "backend said no"}, want: "backend said no"},
		{name: "plain", err: errPlain, want: "plain failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := form.FormatError(tc.err); got != tc.want {
				t.Fatalf("FormatError() = %q, want %q", got, tc.want)
			}
		})
	}
}
