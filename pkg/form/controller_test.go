package form_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

var errPlain = errors.New("plain failure")

type displayErr struct {
	msg string
}

func (e displayErr) Error() string          { return "status 400: " + e.msg }
func (e displayErr) DisplayMessage() string { return e.msg }

type recordingStore struct {
	mu      sync.Mutex
	names   []string
	data    []model.FormState
	removed int
	err     error
}

func (s *recordingStore) Upsert(_ context.Context, name string, data model.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.data = append(s.data, data)
	return s.err
}

func (s *recordingStore) Remove(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
	return s.err
}

func TestSubmitDropsReentrantCalls(t *testing.T) {
	var (
		calls   atomic.Int32
		once    sync.Once
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	upserter := form.UpsertFunc(func(ctx context.Context, name string, data model.FormState) error {
		calls.Add(1)
		once.Do(func() { close(entered) })
		<-release
		return nil
	})
	ctrl := form.NewController(pluginItems(), upserter, form.WithName("limit-a"))
	ctrl.UpdateText("remark", "hello")

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Submit(context.Background())
	}()
	<-entered

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("re-entrant submit should be dropped silently, got %v", err)
	}
	if ctrl.CanSubmit() {
		t.Fatalf("submit must be disabled while processing")
	}
	if err := ctrl.OpenRemoveDialog(); !errors.Is(err, form.ErrRemoveUnavailable) {
		t.Fatalf("expected ErrRemoveUnavailable without remover, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one upsert call, got %d", got)
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("processing flag should be released")
	}
	notice, ok := ctrl.Notice()
	if !ok || notice.Kind != form.NoticeSuccess {
		t.Fatalf("expected active success notice, got %+v (active %v)", notice, ok)
	}
}

func TestSubmitPassesNameAndCopy(t *testing.T) {
	store := &recordingStore{}
	ctrl := form.NewController(pluginItems(), store, form.WithName("limit-a"))
	ctrl.UpdateText("remark", "  hello ")

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := model.FormState{
		"category": "limit",
		"value":    "rate 10",
		"step":     "request",
		"remark":   "hello",
	}
	if diff := cmp.Diff([]string{"limit-a"}, store.names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.data[0]); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	store.data[0]["remark"] = "changed by collaborator"
	if got := ctrl.Values()["remark"]; got != "hello" {
		t.Fatalf("collaborator must receive a copy, form now holds %#v", got)
	}
}

func TestCreateModeValidation(t *testing.T) {
	store := &recordingStore{}
	ctrl := form.NewController(pluginItems(), store, form.WithCreateMode([]string{"limit-a"}))
	ctrl.UpdateText("remark", "draft")
	before := ctrl.Values()

	err := ctrl.Submit(context.Background())
	if !errors.Is(err, form.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	notice, ok := ctrl.Notice()
	if !ok || notice.Kind != form.NoticeError || notice.Message != "name is required" {
		t.Fatalf("unexpected notice %+v (active %v)", notice, ok)
	}

	ctrl.SetNewName(" limit-a ")
	if err := ctrl.Submit(context.Background()); !errors.Is(err, form.ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
	if len(store.names) != 0 {
		t.Fatalf("validation failures must not reach the upserter")
	}
	if diff := cmp.Diff(before, ctrl.Values()); diff != "" {
		t.Fatalf("values changed by rejected submit (-want +got):\n%s", diff)
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("form should be usable after a validation error")
	}

	ctrl.SetNewName("limit-b")
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff([]string{"limit-b"}, store.names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if ctrl.CanRemove() {
		t.Fatalf("create mode never offers remove")
	}
}

func TestSubmitFailureShowsFormattedError(t *testing.T) {
	store := &recordingStore{err: displayErr{msg: "upstream unreachable"}}
	ctrl := form.NewController(pluginItems(), store)

	err := ctrl.Submit(context.Background())
	var display displayErr
	if !errors.As(err, &display) {
		t.Fatalf("expected wrapped collaborator error, got %v", err)
	}
	notice, ok := ctrl.Notice()
	if !ok || notice.Kind != form.NoticeError || notice.Message != "upstream unreachable" {
		t.Fatalf("unexpected notice %+v (active %v)", notice, ok)
	}
	if ctrl.State().Processing {
		t.Fatalf("processing flag should be released after failure")
	}
}

func TestNoticeExpiresWithClock(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctrl := form.NewController(pluginItems(), &recordingStore{},
		form.WithClock(clk),
		form.WithNoticeTTL(2*time.Second),
	)
	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, ok := ctrl.Notice(); !ok {
		t.Fatalf("notice should be active right after submit")
	}
	clk.Step(2 * time.Second)
	if _, ok := ctrl.Notice(); ok {
		t.Fatalf("notice should expire after the ttl")
	}
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	store := &recordingStore{}
	ctrl := form.NewController(pluginItems(), store, form.WithName("limit-a"), form.WithRemover(store))

	if err := ctrl.ConfirmRemove(context.Background()); !errors.Is(err, form.ErrRemoveNotConfirmed) {
		t.Fatalf("expected ErrRemoveNotConfirmed, got %v", err)
	}
	if err := ctrl.OpenRemoveDialog(); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	ctrl.CloseRemoveDialog()
	if err := ctrl.ConfirmRemove(context.Background()); !errors.Is(err, form.ErrRemoveNotConfirmed) {
		t.Fatalf("closed dialog should not confirm, got %v", err)
	}
	if store.removed != 0 {
		t.Fatalf("remover called without confirmation")
	}

	if err := ctrl.OpenRemoveDialog(); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	if err := ctrl.ConfirmRemove(context.Background()); err != nil {
		t.Fatalf("confirm remove: %v", err)
	}
	if store.removed != 1 {
		t.Fatalf("expected one remove call, got %d", store.removed)
	}
	state := ctrl.State()
	if state.RemoveOpen || state.Processing {
		t.Fatalf("dialog and processing should be reset: %+v", state)
	}
}

func TestRemoveFailureKeepsFormUsable(t *testing.T) {
	store := &recordingStore{err: errPlain}
	ctrl := form.NewController(pluginItems(), store, form.WithRemover(store))
	if err := ctrl.OpenRemoveDialog(); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	if err := ctrl.ConfirmRemove(context.Background()); !errors.Is(err, errPlain) {
		t.Fatalf("expected wrapped remover error, got %v", err)
	}
	notice, ok := ctrl.Notice()
	if !ok || notice.Message != "plain failure" {
		t.Fatalf("unexpected notice %+v (active %v)", notice, ok)
	}
	if ctrl.State().Processing {
		t.Fatalf("processing flag should be released after failure")
	}
}

// gate blocks the first collaborator call that reaches it until opened.
type gate struct {
	upserts atomic.Int32
	removes atomic.Int32
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait() {
	first := false
	g.once.Do(func() {
		first = true
		close(g.entered)
	})
	if first {
		<-g.release
	}
}

func (g *gate) Upsert(context.Context, string, model.FormState) error {
	g.upserts.Add(1)
	g.wait()
	return nil
}

func (g *gate) Remove(context.Context) error {
	g.removes.Add(1)
	g.wait()
	return nil
}

func TestConfirmRemoveDroppedWhileSubmitting(t *testing.T) {
	g := newGate()
	ctrl := form.NewController(pluginItems(), g, form.WithName("limit-a"), form.WithRemover(g))

	done := make(chan error, 1)
	go func() { done <- ctrl.Submit(context.Background()) }()
	<-g.entered

	if err := ctrl.OpenRemoveDialog(); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	if err := ctrl.ConfirmRemove(context.Background()); err != nil {
		t.Fatalf("remove during submit should be dropped silently, got %v", err)
	}

	close(g.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := g.removes.Load(); got != 0 {
		t.Fatalf("expected no remove call, got %d", got)
	}
	if got := g.upserts.Load(); got != 1 {
		t.Fatalf("expected one upsert call, got %d", got)
	}
}

func TestSubmitDroppedWhileRemoving(t *testing.T) {
	g := newGate()
	ctrl := form.NewController(pluginItems(), g, form.WithName("limit-a"), form.WithRemover(g))
	ctrl.UpdateText("remark", "hello")

	if err := ctrl.OpenRemoveDialog(); err != nil {
		t.Fatalf("open dialog: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- ctrl.ConfirmRemove(context.Background()) }()
	<-g.entered

	if err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("submit during remove should be dropped silently, got %v", err)
	}
	if ctrl.CanSubmit() {
		t.Fatalf("submit must be disabled while removing")
	}

	close(g.release)
	if err := <-done; err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := g.upserts.Load(); got != 0 {
		t.Fatalf("expected no upsert call, got %d", got)
	}
	if got := g.removes.Load(); got != 1 {
		t.Fatalf("expected one remove call, got %d", got)
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("processing flag should be released")
	}
}

func TestPluginEditorFollowsCategory(t *testing.T) {
	ctrl := form.NewController(pluginItems(), &recordingStore{})

	editor, err := ctrl.PluginEditor()
	if err != nil {
		t.Fatalf("plugin editor: %v", err)
	}
	if _, err := editor.SetSlot(1, "20"); err != nil {
		t.Fatalf("set slot: %v", err)
	}
	if got := ctrl.Values()["value"]; got != "rate 20" {
		t.Fatalf("plugin edits should write back, got %#v", got)
	}

	ctrl.UpdateValue("category", "compression")
	if got := ctrl.Values()["value"]; got != "rate 20" {
		t.Fatalf("category change must not reset the plugin value, got %#v", got)
	}
	editor, err = ctrl.PluginEditor()
	if err != nil {
		t.Fatalf("plugin editor: %v", err)
	}
	if editor.Category() != plugin.Compression {
		t.Fatalf("expected compression editor, got %s", editor.Category())
	}
	if diff := cmp.Diff(plugin.Positional{"rate", "20", ""}, editor.Values()); diff != "" {
		t.Fatalf("decoded values mismatch (-want +got):\n%s", diff)
	}
}

func TestChooseUsesCategorySteps(t *testing.T) {
	ctrl := form.NewController(pluginItems(), &recordingStore{})

	if err := ctrl.Choose("step", 2); !errors.Is(err, form.ErrUnknownOption) {
		t.Fatalf("limit plugins cannot run on upstream response, got %v", err)
	}
	if err := ctrl.Choose("step", 1); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got := ctrl.Values()["step"]; got != "proxy_upstream" {
		t.Fatalf("unexpected step %#v", got)
	}

	ctrl.UpdateValue("category", "response_headers")
	if err := ctrl.Choose("step", 2); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if got := ctrl.Values()["step"]; got != "upstream_response" {
		t.Fatalf("unexpected step %#v", got)
	}
	if err := ctrl.Choose("remark", 0); !errors.Is(err, form.ErrFieldCategory) {
		t.Fatalf("expected ErrFieldCategory, got %v", err)
	}
}

func locationItems() []model.FieldDescriptor {
	return []model.FieldDescriptor{
		{ID: "locations", Category: model.CategoryLocation, Options: model.StringOptions("lz", "lb", "la")},
		{ID: "plugins", Category: model.CategoryPluginSelect, DefaultValue: []string{"p1", "p2", "p3"}},
		{ID: "addrs", Category: model.CategoryAddrs, DefaultValue: []string{"10.0.0.1:80 10"}},
		{ID: "weight", Category: model.CategoryNumber},
	}
}

func TestToggleMemberKeepsSorted(t *testing.T) {
	ctrl := form.NewController(locationItems(), &recordingStore{})

	if _, err := ctrl.ToggleMember("locations", "lb"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, err := ctrl.ToggleMember("locations", "la")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if diff := cmp.Diff([]string{"la", "lb"}, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"la", "lb"}, ctrl.Values()["locations"]); diff != "" {
		t.Fatalf("stored value mismatch (-want +got):\n%s", diff)
	}
	if _, err := ctrl.ToggleMember("weight", "x"); !errors.Is(err, form.ErrFieldCategory) {
		t.Fatalf("expected ErrFieldCategory, got %v", err)
	}
}

func TestMovePluginUp(t *testing.T) {
	ctrl := form.NewController(locationItems(), &recordingStore{})

	got, err := ctrl.MovePluginUp("plugins", 1)
	if err != nil {
		t.Fatalf("move up: %v", err)
	}
	if diff := cmp.Diff([]string{"p2", "p1", "p3"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	got, _ = ctrl.MovePluginUp("plugins", 0)
	if diff := cmp.Diff([]string{"p2", "p1", "p3"}, got); diff != "" {
		t.Fatalf("index 0 should be a no-op (-want +got):\n%s", diff)
	}
	got, _ = ctrl.TogglePlugin("plugins", "p1")
	if diff := cmp.Diff([]string{"p2", "p3"}, got); diff != "" {
		t.Fatalf("deselect mismatch (-want +got):\n%s", diff)
	}
	got, _ = ctrl.TogglePlugin("plugins", "p4")
	if diff := cmp.Diff([]string{"p2", "p3", "p4"}, got); diff != "" {
		t.Fatalf("select mismatch (-want +got):\n%s", diff)
	}
}

func TestListEditorWritesBack(t *testing.T) {
	ctrl := form.NewController(locationItems(), &recordingStore{})

	list, err := ctrl.ListEditor("addrs")
	if err != nil {
		t.Fatalf("list editor: %v", err)
	}
	if list.Delimiter() != " " {
		t.Fatalf("addresses use a space delimiter, got %q", list.Delimiter())
	}
	list.Append()
	if _, err := list.SetName(1, "10.0.0.2:80"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if _, err := list.SetValue(1, "5"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	want := []string{"10.0.0.1:80 10", "10.0.0.2:80 5"}
	if diff := cmp.Diff(want, ctrl.Values()["addrs"]); diff != "" {
		t.Fatalf("stored value mismatch (-want +got):\n%s", diff)
	}
	if !ctrl.CanSubmit() {
		t.Fatalf("list edits should mark the form dirty")
	}
	if _, err := ctrl.ListEditor("weight"); !errors.Is(err, form.ErrFieldCategory) {
		t.Fatalf("expected ErrFieldCategory, got %v", err)
	}
}

func TestUpdateNumber(t *testing.T) {
	ctrl := form.NewController(locationItems(), &recordingStore{})

	ctrl.UpdateNumber("weight", " 12.5 ")
	if got := ctrl.Values()["weight"]; got != 12.5 {
		t.Fatalf("expected 12.5, got %#v", got)
	}
	ctrl.UpdateNumber("weight", "heavy")
	if got := ctrl.Values()["weight"]; got != nil {
		t.Fatalf("malformed number should be nil, got %#v", got)
	}
}
