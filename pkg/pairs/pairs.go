// Package pairs edits ordered lists of "name<delimiter>value" entries such as
// upstream addresses ("10.0.0.1:80 10") or headers ("X-Id:1").
package pairs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndexOutOfRange is returned when an edit targets a missing row.
var ErrIndexOutOfRange = errors.New("pairs: index out of range")

// SplitPair splits entry on the first delimiter. Further occurrences stay in
// the value. A missing delimiter yields an empty value.
func SplitPair(entry, delimiter string) (string, string) {
	if delimiter == "" {
		return entry, ""
	}
	name, value, _ := strings.Cut(entry, delimiter)
	return name, value
}

// JoinPair recombines a name and value, trimming surrounding whitespace.
func JoinPair(name, value, delimiter string) string {
	return strings.TrimSpace(name + delimiter + value)
}

// ListEditor holds the rows of a paired list. It always has at least one row
// so there is an editable entry to type into.
type ListEditor struct {
	delimiter string
	entries   []string
	onChange  func([]string)
}

// NewListEditor copies values into a new editor. onChange, when set, receives
// the emitted list after every mutation.
func NewListEditor(delimiter string, values []string, onChange func([]string)) *ListEditor {
	entries := append([]string(nil), values...)
	if len(entries) == 0 {
		entries = []string{""}
	}
	return &ListEditor{
		delimiter: delimiter,
		entries:   entries,
		onChange:  onChange,
	}
}

// Delimiter reports the name/value separator.
func (l *ListEditor) Delimiter() string {
	return l.delimiter
}

// Len returns the number of rows, blank rows included.
func (l *ListEditor) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all rows, blank rows included.
func (l *ListEditor) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Pair returns the name and value shown for row index.
func (l *ListEditor) Pair(index int) (string, string, error) {
	if err := l.check(index); err != nil {
		return "", "", err
	}
	name, value := SplitPair(l.entries[index], l.delimiter)
	return name, value, nil
}

// SetName replaces the name of row index, keeping its value.
func (l *ListEditor) SetName(index int, name string) ([]string, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	_, value := SplitPair(l.entries[index], l.delimiter)
	l.entries[index] = JoinPair(strings.TrimSpace(name), value, l.delimiter)
	return l.emit(), nil
}

// SetValue replaces the value of row index, keeping its name.
func (l *ListEditor) SetValue(index int, value string) ([]string, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	name, _ := SplitPair(l.entries[index], l.delimiter)
	l.entries[index] = JoinPair(name, strings.TrimSpace(value), l.delimiter)
	return l.emit(), nil
}

// Set replaces row index with a raw entry.
func (l *ListEditor) Set(index int, entry string) ([]string, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	l.entries[index] = strings.TrimSpace(entry)
	return l.emit(), nil
}

// Remove deletes row index. Later rows shift down by one. Removing the last
// remaining row leaves a single blank row.
func (l *ListEditor) Remove(index int) ([]string, error) {
	if err := l.check(index); err != nil {
		return nil, err
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	if len(l.entries) == 0 {
		l.entries = []string{""}
	}
	return l.emit(), nil
}

// Append adds a blank row at the end. Blank rows are never emitted, so the
// parent value does not change.
func (l *ListEditor) Append() {
	l.entries = append(l.entries, "")
}

// Emit returns the non-blank rows in order.
func (l *ListEditor) Emit() []string {
	out := make([]string, 0, len(l.entries))
	for _, entry := range l.entries {
		if v := strings.TrimSpace(entry); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (l *ListEditor) emit() []string {
	values := l.Emit()
	if l.onChange != nil {
		l.onChange(append([]string(nil), values...))
	}
	return values
}

func (l *ListEditor) check(index int) error {
	if index < 0 || index >= len(l.entries) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(l.entries))
	}
	return nil
}
