// Package tui edits a form in the terminal. A Session walks the visible
// fields of a form.Controller, prompting with the widget that fits each
// field category, then offers to save or remove the entry.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/pairs"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

// Outcome reports how a session ended.
type Outcome int

const (
	OutcomeCancelled Outcome = iota
	OutcomeSaved
	OutcomeRemoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeRemoved:
		return "removed"
	default:
		return "cancelled"
	}
}

const (
	actionSave   = "Save"
	actionRemove = "Remove"
	actionRename = "Change name"
	actionCancel = "Cancel"

	listKeep   = "Keep"
	listEdit   = "Edit"
	listRemove = "Remove"
)

// Session drives one controller through the terminal.
type Session struct {
	ctrl   *form.Controller
	driver PromptDriver
	logger *zap.Logger
	title  string
}

// NewSession prepares a session over ctrl. Without WithPromptDriver the
// survey-backed driver is used.
func NewSession(ctrl *form.Controller, opts ...Option) *Session {
	s := &Session{
		ctrl:   ctrl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(os.Stdout)
	}
	return s
}

// Run prompts for every field, then for the final action.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	if s.title != "" {
		if err := s.driver.Info(ctx, titleStyle.Render(s.title)); err != nil {
			return OutcomeCancelled, err
		}
	}
	if s.ctrl.CreateMode() {
		if err := s.promptName(ctx); err != nil {
			return OutcomeCancelled, err
		}
	}
	for _, item := range s.ctrl.Items() {
		if err := s.promptField(ctx, item.ID); err != nil {
			return OutcomeCancelled, fmt.Errorf("tui: field %s: %w", item.ID, err)
		}
	}
	return s.finish(ctx)
}

func (s *Session) promptName(ctx context.Context) error {
	name, err := s.driver.Input(ctx, InputConfig{
		Message: "Name",
		Default: s.ctrl.State().NewName,
	})
	if err != nil {
		return err
	}
	s.ctrl.SetNewName(name)
	return nil
}

func (s *Session) finish(ctx context.Context) (Outcome, error) {
	for {
		actions := []string{actionSave}
		if s.ctrl.CreateMode() {
			actions = append(actions, actionRename)
		}
		if s.ctrl.CanRemove() {
			actions = append(actions, actionRemove)
		}
		actions = append(actions, actionCancel)

		idx, err := s.driver.Select(ctx, SelectConfig{Message: "Action", Options: actions})
		if err != nil {
			return OutcomeCancelled, err
		}
		if idx < 0 || idx >= len(actions) {
			return OutcomeCancelled, ErrCancelled
		}

		switch actions[idx] {
		case actionSave:
			err := s.ctrl.Submit(ctx)
			s.showNotice(ctx)
			if err == nil {
				return OutcomeSaved, nil
			}
			if !errors.Is(err, form.ErrNameRequired) && !errors.Is(err, form.ErrNameExists) {
				s.logger.Debug("submit failed", zap.Error(err))
			}
		case actionRename:
			if err := s.promptName(ctx); err != nil {
				return OutcomeCancelled, err
			}
		case actionRemove:
			removed, err := s.remove(ctx)
			if err != nil {
				return OutcomeCancelled, err
			}
			if removed {
				return OutcomeRemoved, nil
			}
		default:
			return OutcomeCancelled, ErrCancelled
		}
	}
}

func (s *Session) remove(ctx context.Context) (bool, error) {
	if err := s.ctrl.OpenRemoveDialog(); err != nil {
		return false, err
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Remove this entry?"})
	if err != nil {
		s.ctrl.CloseRemoveDialog()
		return false, err
	}
	if !ok {
		s.ctrl.CloseRemoveDialog()
		return false, nil
	}
	err = s.ctrl.ConfirmRemove(ctx)
	s.showNotice(ctx)
	if err != nil {
		s.logger.Debug("remove failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Session) showNotice(ctx context.Context) {
	notice, ok := s.ctrl.Notice()
	if !ok {
		return
	}
	if err := s.driver.Info(ctx, RenderNotice(notice)); err != nil {
		s.logger.Debug("print notice", zap.Error(err))
	}
}

func (s *Session) field(id string) (model.FieldDescriptor, bool) {
	for _, field := range s.ctrl.VisibleFields() {
		if field.ID == id {
			return field, true
		}
	}
	return model.FieldDescriptor{}, false
}

func (s *Session) promptField(ctx context.Context, id string) error {
	field, ok := s.field(id)
	if !ok {
		return nil
	}
	label := field.DisplayLabel()
	current := stringValue(field.DefaultValue)

	switch field.Category {
	case model.CategoryNumber:
		raw, err := s.driver.Input(ctx, InputConfig{Message: label, Default: current, Validator: validateNumber})
		if err != nil {
			return err
		}
		s.ctrl.UpdateNumber(id, raw)
	case model.CategoryTextarea:
		raw, err := s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current})
		if err != nil {
			return err
		}
		s.ctrl.UpdateText(id, raw)
	case model.CategoryCheckbox, model.CategoryPluginStep, model.CategorySelect,
		model.CategoryUpstream, model.CategoryWebhookType:
		if field.Options.Empty() {
			return s.promptText(ctx, field, current)
		}
		return s.promptChoice(ctx, field)
	case model.CategoryLocation, model.CategoryWebhookNotifications:
		return s.promptMembers(ctx, field)
	case model.CategoryPluginSelect:
		return s.promptPlugins(ctx, field)
	case model.CategoryAddrs, model.CategoryHeaders, model.CategoryProxyAddHeaders, model.CategoryProxySetHeaders:
		list, err := s.ctrl.ListEditor(id)
		if err != nil {
			return err
		}
		return s.editList(ctx, label, list)
	case model.CategoryPlugin:
		return s.promptPlugin(ctx, field)
	default:
		return s.promptText(ctx, field, current)
	}
	return nil
}

func (s *Session) promptText(ctx context.Context, field model.FieldDescriptor, current string) error {
	raw, err := s.driver.Input(ctx, InputConfig{Message: field.DisplayLabel(), Default: current})
	if err != nil {
		return err
	}
	s.ctrl.UpdateText(field.ID, raw)
	return nil
}

func (s *Session) promptChoice(ctx context.Context, field model.FieldDescriptor) error {
	labels := field.Options.Labels()
	cfg := SelectConfig{Message: field.DisplayLabel(), Options: labels, DefaultIndex: -1}
	if len(field.Options.Checkable) > 0 {
		option := field.Options.OptionFor(field.DefaultValue)
		for i, opt := range field.Options.Checkable {
			if opt.Option == option {
				cfg.DefaultIndex = i
			}
		}
	} else {
		cfg.DefaultIndex = indexOf(field.Options.Strings, stringValue(field.DefaultValue))
	}

	idx, err := s.driver.Select(ctx, cfg)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(labels) {
		return nil
	}
	if len(field.Options.Checkable) > 0 {
		return s.ctrl.Choose(field.ID, field.Options.Checkable[idx].Option)
	}
	return s.ctrl.Choose(field.ID, idx)
}

func (s *Session) promptMembers(ctx context.Context, field model.FieldDescriptor) error {
	options := field.Options.ValueStrings()
	selected := toStrings(field.DefaultValue)
	if len(options) == 0 {
		raw, err := s.driver.Input(ctx, InputConfig{
			Message: field.DisplayLabel(),
			Default: strings.Join(selected, " "),
			Help:    "space separated",
		})
		if err != nil {
			return err
		}
		return s.syncMembers(field.ID, selected, strings.Fields(raw))
	}

	picked, err := s.driver.MultiSelect(ctx, SelectConfig{
		Message:  field.DisplayLabel(),
		Options:  field.Options.Labels(),
		Defaults: indicesOf(options, selected),
	})
	if err != nil {
		return err
	}
	wanted := make([]string, 0, len(picked))
	for _, idx := range picked {
		wanted = append(wanted, options[idx])
	}
	return s.syncMembers(field.ID, selected, wanted)
}

func (s *Session) syncMembers(id string, current, wanted []string) error {
	for _, member := range symmetricDifference(current, wanted) {
		if _, err := s.ctrl.ToggleMember(id, member); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptPlugins(ctx context.Context, field model.FieldDescriptor) error {
	options := field.Options.ValueStrings()
	selected := toStrings(field.DefaultValue)
	if len(options) > 0 {
		picked, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.DisplayLabel(),
			Options:  options,
			Defaults: indicesOf(options, selected),
		})
		if err != nil {
			return err
		}
		wanted := make([]string, 0, len(picked))
		for _, idx := range picked {
			wanted = append(wanted, options[idx])
		}
		for _, name := range symmetricDifference(selected, wanted) {
			if selected, err = s.ctrl.TogglePlugin(field.ID, name); err != nil {
				return err
			}
		}
	}

	for len(selected) > 1 {
		if err := s.driver.Info(ctx, hintStyle.Render("Order: "+strings.Join(selected, " → "))); err != nil {
			return err
		}
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Move a plugin up?"})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: "Plugin to move up", Options: selected[1:]})
		if err != nil {
			return err
		}
		if idx < 0 {
			continue
		}
		if selected, err = s.ctrl.MovePluginUp(field.ID, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptPlugin(ctx context.Context, field model.FieldDescriptor) error {
	editor, err := s.ctrl.PluginEditor()
	if err != nil {
		return err
	}
	descriptors := editor.Descriptors(field.ID)
	for i, sub := range editor.SubFields() {
		if err := s.promptSubField(ctx, editor, sub.Key, descriptors[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptSubField(ctx context.Context, editor *plugin.Editor, key string, sub model.FieldDescriptor) error {
	label := sub.DisplayLabel()
	current := stringValue(sub.DefaultValue)

	var (
		raw string
		err error
	)
	switch sub.Category {
	case model.CategoryHeaders:
		list, err := editor.List(key)
		if err != nil {
			return err
		}
		return s.editList(ctx, label, list)
	case model.CategorySelect:
		values := sub.Options.ValueStrings()
		var idx int
		idx, err = s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      sub.Options.Labels(),
			DefaultIndex: indexOf(values, current),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			return nil
		}
		raw = values[idx]
	case model.CategoryTextarea:
		raw, err = s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current})
	case model.CategoryNumber:
		raw, err = s.driver.Input(ctx, InputConfig{Message: label, Default: current, Validator: validateNumber})
	default:
		raw, err = s.driver.Input(ctx, InputConfig{Message: label, Default: current})
	}
	if err != nil {
		return err
	}
	_, err = editor.Set(key, raw)
	return err
}

// editList walks the rows of a paired list, then offers to append rows.
func (s *Session) editList(ctx context.Context, label string, list *pairs.ListEditor) error {
	for i := 0; i < list.Len(); {
		name, value, err := list.Pair(i)
		if err != nil {
			return err
		}
		if name == "" && value == "" {
			i++
			continue
		}
		entry := pairs.JoinPair(name, value, list.Delimiter())
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("%s: %s", label, entry),
			Options: []string{listKeep, listEdit, listRemove},
		})
		if err != nil {
			return err
		}
		switch idx {
		case 1:
			if err := s.editRow(ctx, list, i, name, value); err != nil {
				return err
			}
			i++
		case 2:
			if _, err := list.Remove(i); err != nil {
				return err
			}
		default:
			i++
		}
	}

	for {
		more, err := s.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s entry?", label)})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		index := list.Len()
		if name, value, _ := list.Pair(index - 1); name == "" && value == "" {
			index--
		} else {
			list.Append()
		}
		if err := s.editRow(ctx, list, index, "", ""); err != nil {
			return err
		}
	}
}

func (s *Session) editRow(ctx context.Context, list *pairs.ListEditor, index int, name, value string) error {
	newName, err := s.driver.Input(ctx, InputConfig{Message: "Name", Default: name})
	if err != nil {
		return err
	}
	newValue, err := s.driver.Input(ctx, InputConfig{Message: "Value", Default: value})
	if err != nil {
		return err
	}
	if _, err := list.SetName(index, newName); err != nil {
		return err
	}
	_, err = list.SetValue(index, newValue)
	return err
}

func validateNumber(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if form.ParseNumber(raw) == nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func stringValue(v any) string {
	return model.Stringify(v)
}

func toStrings(v any) []string {
	return model.StringList(v)
}

// symmetricDifference returns members present in exactly one of a and b,
// in the order they appear.
func symmetricDifference(a, b []string) []string {
	inA := make(map[string]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := inB[v]; !ok {
			out = append(out, v)
		}
	}
	for _, v := range b {
		if _, ok := inA[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
