// Package form owns the editable state of one configuration entry: the field
// values, the active plugin category, the dirty and processing flags, the
// remove confirmation dialog and the transient notice.
//
// State transitions are expressed as actions folded by the pure Reduce
// function. Controller wraps Reduce with the collaborators that persist or
// delete the entry.
package form

import (
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/plugin"
)

// State is a snapshot of a form. Values is never shared between snapshots
// produced by Reduce.
type State struct {
	Values     model.FormState
	Category   plugin.Category
	NewName    string
	Dirty      bool
	Processing bool
	RemoveOpen bool
	Notice     Notice
}

// NewState seeds a state from the descriptors' defaults.
func NewState(items []model.FieldDescriptor) State {
	values := model.ResolveDefaults(items)
	return State{
		Values:   values,
		Category: categoryOf(values),
	}
}

// PluginCategory returns the category whose codec applies to plugin fields.
// Empty and unknown categories use the stats layout.
func (s State) PluginCategory() plugin.Category {
	if s.Category.Valid() {
		return s.Category
	}
	return plugin.Stats
}

// Action is a state transition understood by Reduce.
type Action interface {
	action()
}

// SetValue writes one field value.
type SetValue struct {
	ID    string
	Value any
}

// SetNewName records the name typed in create mode.
type SetNewName struct {
	Name string
}

// BeginProcessing marks a collaborator call as in flight.
type BeginProcessing struct{}

// EndProcessing releases the in-flight mark.
type EndProcessing struct{}

// ShowNotice replaces the current notice.
type ShowNotice struct {
	Notice Notice
}

// ClearNotice hides the current notice.
type ClearNotice struct{}

// OpenRemoveDialog shows the remove confirmation.
type OpenRemoveDialog struct{}

// CloseRemoveDialog hides the remove confirmation.
type CloseRemoveDialog struct{}

func (SetValue) action()          {}
func (SetNewName) action()        {}
func (BeginProcessing) action()   {}
func (EndProcessing) action()     {}
func (ShowNotice) action()        {}
func (ClearNotice) action()       {}
func (OpenRemoveDialog) action()  {}
func (CloseRemoveDialog) action() {}

// Reduce applies a to s and returns the next state. s is not modified.
func Reduce(s State, a Action) State {
	next := s
	switch act := a.(type) {
	case SetValue:
		next.Values = s.Values.Clone()
		if next.Values == nil {
			next.Values = model.FormState{}
		}
		next.Values[act.ID] = model.NormalizeValue(act.Value)
		next.Dirty = true
		if next.Notice.Kind == NoticeSuccess {
			next.Notice = Notice{}
		}
		next.Category = categoryOf(next.Values)
	case SetNewName:
		next.NewName = strings.TrimSpace(act.Name)
	case BeginProcessing:
		next.Processing = true
	case EndProcessing:
		next.Processing = false
	case ShowNotice:
		next.Notice = act.Notice
	case ClearNotice:
		next.Notice = Notice{}
	case OpenRemoveDialog:
		next.RemoveOpen = true
	case CloseRemoveDialog:
		next.RemoveOpen = false
	}
	return next
}

func categoryOf(values model.FormState) plugin.Category {
	return plugin.Category(values.String(model.CategorySelectorID))
}
