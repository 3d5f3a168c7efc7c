package plugin

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Shape names the sub-value layout of a category.
type Shape int

const (
	ShapeRaw Shape = iota
	ShapePositional
	ShapeResponseHeaders
	ShapeMock
)

func (s Shape) String() string {
	switch s {
	case ShapePositional:
		return "positional"
	case ShapeResponseHeaders:
		return "response_headers"
	case ShapeMock:
		return "mock"
	default:
		return "raw"
	}
}

// Values is the decoded form of a flat plugin string. It is one of Raw,
// Positional, HeaderSet or MockInfo.
type Values interface {
	Shape() Shape
}

// Raw is a single undivided value.
type Raw string

// Shape implements Values.
func (Raw) Shape() Shape { return ShapeRaw }

// Positional holds space separated slots. A slot keeps its position even when
// empty, so values are padded to the category's slot count: "rate" for limit
// encodes as "rate " and all-empty slots encode as separators only. The
// backend splits on single spaces and checks the slot count.
type Positional []string

// Shape implements Values.
func (Positional) Shape() Shape { return ShapePositional }

// Slot returns slot i, or "" when the slot is missing.
func (p Positional) Slot(i int) string {
	if i < 0 || i >= len(p) {
		return ""
	}
	return p[i]
}

// Int parses slot i as an integer. Empty or malformed slots report false.
func (p Positional) Int(i int) (int, bool) {
	raw := strings.TrimSpace(p.Slot(i))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HeaderSet splits response header directives by sigil.
type HeaderSet struct {
	Set    []string `json:"set_headers"`
	Add    []string `json:"add_headers"`
	Remove []string `json:"remove_headers"`
}

// Shape implements Values.
func (HeaderSet) Shape() Shape { return ShapeResponseHeaders }

// MockInfo is the mock plugin's JSON document.
type MockInfo struct {
	Status  *int     `json:"status"`
	Path    string   `json:"path"`
	Headers []string `json:"headers"`
	Data    string   `json:"data"`

	// Extra keeps unknown top-level keys, in document order, so they survive
	// a re-encode.
	Extra []ExtraField `json:"-"`
}

// ExtraField is an unrecognised mock document key with its raw JSON value.
type ExtraField struct {
	Key   string
	Value json.RawMessage
}

// Shape implements Values.
func (MockInfo) Shape() Shape { return ShapeMock }

// DefaultMockInfo is the all-empty mock document.
func DefaultMockInfo() MockInfo {
	return MockInfo{Headers: []string{}}
}
