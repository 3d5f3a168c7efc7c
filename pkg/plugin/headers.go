package plugin

import (
	"strings"

	"go.uber.org/zap"
)

const (
	addSigil    = "+"
	removeSigil = "-"
)

func decodeHeaderSet(flat string, _ *zap.Logger) Values {
	return ParseHeaderSet(flat)
}

// ParseHeaderSet sorts space separated header directives by their sigil:
// "+name:value" adds, "-name" removes and anything else sets. Blank entries
// and bare sigils are dropped.
func ParseHeaderSet(flat string) HeaderSet {
	set := HeaderSet{Set: []string{}, Add: []string{}, Remove: []string{}}
	for _, item := range strings.Split(flat, " ") {
		entry := strings.TrimSpace(item)
		if entry == "" {
			continue
		}
		switch {
		case strings.HasPrefix(entry, addSigil):
			if rest := entry[len(addSigil):]; rest != "" {
				set.Add = append(set.Add, rest)
			}
		case strings.HasPrefix(entry, removeSigil):
			if rest := entry[len(removeSigil):]; rest != "" {
				set.Remove = append(set.Remove, rest)
			}
		default:
			set.Set = append(set.Set, entry)
		}
	}
	return set
}

func encodeHeaderSet(v Values) (string, error) {
	return v.(HeaderSet).String(), nil
}

// String encodes the set: set headers first, then "+" add headers, then "-"
// remove headers.
func (h HeaderSet) String() string {
	out := make([]string, 0, len(h.Set)+len(h.Add)+len(h.Remove))
	for _, entry := range h.Set {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	for _, entry := range h.Add {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, addSigil+entry)
		}
	}
	for _, entry := range h.Remove {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, removeSigil+entry)
		}
	}
	return strings.Join(out, " ")
}

// splitEntries splits a space separated text value, dropping blanks.
func splitEntries(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, " ") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func joinEntries(entries []string) string {
	return strings.Join(entries, " ")
}
