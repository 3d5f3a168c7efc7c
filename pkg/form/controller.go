package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/pairs"
	"github.com/goliatone/go-pluginform/pkg/plugin"
	"github.com/goliatone/go-pluginform/pkg/selection"
)

// Controller drives one form: value edits through the typed helpers, the
// submit workflow and the confirmed remove workflow. Submit and ConfirmRemove
// share a single-flight guard; a call made while another is outstanding is
// dropped.
//
// The editors returned by ListEditor and PluginEditor are not safe for
// concurrent use and belong to the goroutine driving the form.
type Controller struct {
	mu        sync.Mutex
	items     []model.FieldDescriptor
	byID      map[string]model.FieldDescriptor
	state     State
	logger    *zap.Logger
	clock     clock.PassiveClock
	noticeTTL time.Duration

	create   bool
	existing map[string]struct{}
	name     string
	upserter Upserter
	remover  Remover

	lists   map[string]*pairs.ListEditor
	sets    map[string]*selection.SortedSet
	ordered map[string]*selection.OrderedList
	editor  *plugin.Editor
}

// NewController builds a controller over items, seeding the state from their
// defaults. upserter receives the submitted values.
func NewController(items []model.FieldDescriptor, upserter Upserter, opts ...Option) *Controller {
	c := &Controller{
		items:     append([]model.FieldDescriptor(nil), items...),
		byID:      make(map[string]model.FieldDescriptor, len(items)),
		state:     NewState(items),
		logger:    zap.NewNop(),
		clock:     clock.RealClock{},
		noticeTTL: DefaultNoticeTTL,
		upserter:  upserter,
		lists:     make(map[string]*pairs.ListEditor),
		sets:      make(map[string]*selection.SortedSet),
		ordered:   make(map[string]*selection.OrderedList),
	}
	for _, item := range c.items {
		c.byID[item.ID] = item
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := c.state
	snapshot.Values = c.state.Values.Clone()
	return snapshot
}

// Values returns a copy of the current field values.
func (c *Controller) Values() model.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Values.Clone()
}

// Items returns the descriptors the form was built from.
func (c *Controller) Items() []model.FieldDescriptor {
	return append([]model.FieldDescriptor(nil), c.items...)
}

// VisibleFields derives the descriptors to present for the current state.
func (c *Controller) VisibleFields() []model.FieldDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return VisibleFields(c.items, c.state)
}

// Notice returns the current notice while it is active.
func (c *Controller) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.state.Notice
	if !n.Active(c.clock.Now()) {
		return Notice{}, false
	}
	return n, true
}

// CreateMode reports whether the form creates a new entry.
func (c *Controller) CreateMode() bool {
	return c.create
}

// CanSubmit reports whether there are edits and nothing is in flight.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Dirty && !c.state.Processing
}

// CanRemove reports whether the remove workflow is offered.
func (c *Controller) CanRemove() bool {
	return !c.create && c.remover != nil
}

// UpdateValue is the single entry point for field edits. Empty strings are
// stored as nil. Editors previously handed out for id are discarded.
func (c *Controller) UpdateValue(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, id)
	delete(c.sets, id)
	delete(c.ordered, id)
	if item, ok := c.byID[id]; ok && item.Category == model.CategoryPlugin {
		c.editor = nil
	}
	c.apply(id, value)
}

func (c *Controller) apply(id string, value any) {
	before := c.state.Category
	c.state = Reduce(c.state, SetValue{ID: id, Value: value})
	if c.state.Category != before {
		c.logger.Debug("plugin category changed",
			zap.String("from", string(before)),
			zap.String("to", string(c.state.Category)),
		)
		c.editor = nil
	}
}

func (c *Controller) update(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(id, value)
}

// UpdateText stores trimmed text for id.
func (c *Controller) UpdateText(id, raw string) {
	c.UpdateValue(id, strings.TrimSpace(raw))
}

// UpdateNumber stores raw parsed as a number. Empty or malformed input is
// stored as nil.
func (c *Controller) UpdateNumber(id, raw string) {
	c.UpdateValue(id, ParseNumber(raw))
}

// ParseNumber parses a numeric input. Empty or malformed input yields nil.
func ParseNumber(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return f
}

// SetNewName records the name typed in create mode.
func (c *Controller) SetNewName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, SetNewName{Name: name})
}

// Choose selects an option of a select-like field. For checkable options
// option is the option number; for plain options it is the index.
func (c *Controller) Choose(id string, option int) error {
	field, err := c.visibleField(id)
	if err != nil {
		return err
	}
	if field.Options.Empty() {
		return fmt.Errorf("%w: %s has no options", ErrFieldCategory, id)
	}
	if len(field.Options.Checkable) > 0 {
		opt, ok := field.Options.ByOption(option)
		if !ok {
			return fmt.Errorf("%w: %d for %s", ErrUnknownOption, option, id)
		}
		c.UpdateValue(id, opt.Value)
		return nil
	}
	if option < 0 || option >= len(field.Options.Strings) {
		return fmt.Errorf("%w: %d for %s", ErrUnknownOption, option, id)
	}
	c.UpdateValue(id, field.Options.Strings[option])
	return nil
}

// ToggleMember flips member in a sorted multi-select field and returns the
// stored list.
func (c *Controller) ToggleMember(id, member string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expect(id, model.CategoryLocation, model.CategoryWebhookNotifications); err != nil {
		return nil, err
	}
	set, ok := c.sets[id]
	if !ok {
		set = selection.NewSortedSet(c.state.Values.Strings(id))
		c.sets[id] = set
	}
	values := set.Toggle(member)
	c.apply(id, values)
	return values, nil
}

// TogglePlugin selects or deselects name in an ordered plugin list.
func (c *Controller) TogglePlugin(id, name string) ([]string, error) {
	return c.withOrdered(id, func(list *selection.OrderedList) {
		list.Toggle(name)
	})
}

// MovePluginUp moves the plugin at index one position up. Index 0 is a no-op.
func (c *Controller) MovePluginUp(id string, index int) ([]string, error) {
	return c.withOrdered(id, func(list *selection.OrderedList) {
		list.MoveUp(index)
	})
}

func (c *Controller) withOrdered(id string, fn func(*selection.OrderedList)) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.expect(id, model.CategoryPluginSelect); err != nil {
		return nil, err
	}
	list, ok := c.ordered[id]
	if !ok {
		list = selection.NewOrderedList(c.state.Values.Strings(id))
		c.ordered[id] = list
	}
	fn(list)
	values := list.Values()
	c.apply(id, values)
	return values, nil
}

// ListEditor returns the paired-list editor for a list field. Its edits are
// written back to the field.
func (c *Controller) ListEditor(id string) (*pairs.ListEditor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	delimiter, ok := item.Category.PairDelimiter()
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrFieldCategory, id, item.Category)
	}
	if list, ok := c.lists[id]; ok {
		return list, nil
	}
	list := pairs.NewListEditor(delimiter, c.state.Values.Strings(id), func(entries []string) {
		c.update(id, entries)
	})
	c.lists[id] = list
	return list, nil
}

// PluginEditor returns the sub-field editor of the plugin field for the
// active category. A category change yields a fresh editor decoding the
// current value.
func (c *Controller) PluginEditor() (*plugin.Editor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.pluginFieldID()
	if id == "" {
		return nil, fmt.Errorf("%w: no plugin field", ErrUnknownField)
	}
	if c.editor != nil {
		return c.editor, nil
	}
	c.editor = plugin.NewEditor(c.state.PluginCategory(), c.state.Values.String(id), func(flat string) {
		c.update(id, flat)
	}, plugin.WithLogger(c.logger))
	return c.editor, nil
}

func (c *Controller) pluginFieldID() string {
	for _, item := range c.items {
		if item.Category == model.CategoryPlugin {
			return item.ID
		}
	}
	return ""
}

func (c *Controller) visibleField(id string) (model.FieldDescriptor, error) {
	for _, field := range c.VisibleFields() {
		if field.ID == id {
			return field, nil
		}
	}
	return model.FieldDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownField, id)
}

func (c *Controller) expect(id string, categories ...model.FieldCategory) error {
	item, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	for _, category := range categories {
		if item.Category == category {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is %s", ErrFieldCategory, id, item.Category)
}

// Submit validates and hands a copy of the values to the upserter. A call
// made while another submit or remove is in flight returns nil without doing
// anything. Validation and collaborator errors are returned and also shown as
// an error notice.
func (c *Controller) Submit(ctx context.Context) error {
	name, data, ok, err := c.beginSubmit()
	if !ok {
		return err
	}
	defer c.release()

	if err := c.upserter.Upsert(ctx, name, data); err != nil {
		c.logger.Warn("upsert failed", zap.String("name", name), zap.Error(err))
		c.notify(NoticeError, FormatError(err))
		return fmt.Errorf("form: upsert %q: %w", name, err)
	}
	c.logger.Debug("upsert succeeded", zap.String("name", name))
	c.notify(NoticeSuccess, "saved")
	return nil
}

func (c *Controller) beginSubmit() (string, model.FormState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Processing {
		c.logger.Debug("submit dropped while processing")
		return "", nil, false, nil
	}
	if c.upserter == nil {
		return "", nil, false, ErrUpsertUnavailable
	}

	name := c.name
	if c.create {
		name = c.state.NewName
		var err error
		if name == "" {
			err = ErrNameRequired
		} else if _, taken := c.existing[name]; taken {
			err = fmt.Errorf("%w: %q", ErrNameExists, name)
		}
		if err != nil {
			c.state = Reduce(c.state, ShowNotice{Notice: c.notice(NoticeError, FormatError(err))})
			return "", nil, false, err
		}
	}

	c.state = Reduce(c.state, BeginProcessing{})
	return name, c.state.Values.Clone(), true, nil
}

// OpenRemoveDialog asks for confirmation before removing the entry.
func (c *Controller) OpenRemoveDialog() error {
	if !c.CanRemove() {
		return ErrRemoveUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, OpenRemoveDialog{})
	return nil
}

// CloseRemoveDialog dismisses the confirmation without removing anything.
func (c *Controller) CloseRemoveDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, CloseRemoveDialog{})
}

// ConfirmRemove closes the confirmation dialog and calls the remover. It
// shares the submit guard: a call made while processing is dropped.
func (c *Controller) ConfirmRemove(ctx context.Context) error {
	ok, err := c.beginRemove()
	if !ok {
		return err
	}
	defer c.release()

	if err := c.remover.Remove(ctx); err != nil {
		c.logger.Warn("remove failed", zap.String("name", c.name), zap.Error(err))
		c.notify(NoticeError, FormatError(err))
		return fmt.Errorf("form: remove %q: %w", c.name, err)
	}
	c.logger.Debug("remove succeeded", zap.String("name", c.name))
	c.notify(NoticeSuccess, "removed")
	return nil
}

func (c *Controller) beginRemove() (bool, error) {
	if !c.CanRemove() {
		return false, ErrRemoveUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Processing {
		c.logger.Debug("remove dropped while processing")
		return false, nil
	}
	if !c.state.RemoveOpen {
		return false, ErrRemoveNotConfirmed
	}
	c.state = Reduce(c.state, CloseRemoveDialog{})
	c.state = Reduce(c.state, BeginProcessing{})
	return true, nil
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, EndProcessing{})
}

func (c *Controller) notify(kind NoticeKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, ShowNotice{Notice: c.notice(kind, message)})
}

func (c *Controller) notice(kind NoticeKind, message string) Notice {
	return NewNotice(kind, message, c.clock.Now(), c.noticeTTL)
}
