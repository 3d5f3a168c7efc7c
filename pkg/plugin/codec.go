// Package plugin converts proxy plugin configuration between the flat,
// space-delimited string the backend persists and the typed sub-values a form
// edits. Each category has a fixed layout, kept in a static table.
package plugin

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrShapeMismatch is returned when values of one shape are encoded or
	// edited as another.
	ErrShapeMismatch = errors.New("plugin: values do not match category shape")
	// ErrSlotOutOfRange is returned for edits to a slot the category lacks.
	ErrSlotOutOfRange = errors.New("plugin: slot out of range")
	// ErrInvalidOption is returned when a select slot gets a value outside its
	// option list.
	ErrInvalidOption = errors.New("plugin: value not in option list")
	// ErrUnknownSubField is returned for sub-field keys the category lacks.
	ErrUnknownSubField = errors.New("plugin: unknown sub-field")
)

const slotDelimiter = " "

type codec struct {
	shape  Shape
	fields []SubField
	decode func(flat string, logger *zap.Logger) Values
	encode func(Values) (string, error)
}

var codecs = map[Category]codec{
	Compression:     positionalCodec(compressionFields),
	Admin:           positionalCodec(adminFields),
	Limit:           positionalCodec(limitFields),
	RequestID:       positionalCodec(requestIDFields),
	IPLimit:         positionalCodec(ipLimitFields),
	KeyAuth:         positionalCodec(keyAuthFields),
	Directory:       rawCodec("Static Directory"),
	BasicAuth:       rawCodec("Basic Auth List"),
	Cache:           rawCodec("Cache Storage"),
	RedirectHTTPS:   rawCodec("Redirect Prefix"),
	Ping:            rawCodec("Ping Path"),
	Stats:           rawCodec("Stats Path"),
	ResponseHeaders: {shape: ShapeResponseHeaders, fields: responseHeaderFields, decode: decodeHeaderSet, encode: encodeHeaderSet},
	Mock:            {shape: ShapeMock, fields: mockFields, decode: decodeMockLogged, encode: encodeMock},
}

func lookup(c Category) codec {
	if entry, ok := codecs[c]; ok {
		return entry
	}
	return codecs[Stats]
}

// Option configures decoding and editing.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger reports recovered parse failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func resolveOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ShapeOf reports the sub-value layout of c. Unknown categories use the stats
// layout.
func ShapeOf(c Category) Shape {
	return lookup(c).shape
}

// Decode splits a flat string into the sub-values for c. It never fails:
// malformed input is recovered to the category's empty value.
func Decode(c Category, flat string, opts ...Option) Values {
	o := resolveOptions(opts)
	return lookup(c).decode(flat, o.logger.With(zap.String("category", string(c))))
}

// Encode joins sub-values back into the flat string for c.
func Encode(c Category, values Values) (string, error) {
	entry := lookup(c)
	if values == nil || values.Shape() != entry.shape {
		return "", fmt.Errorf("%w: %s expects %s", ErrShapeMismatch, c, entry.shape)
	}
	return entry.encode(values)
}

// Normalize decodes and re-encodes flat, yielding the canonical encoding.
func Normalize(c Category, flat string, opts ...Option) (string, error) {
	return Encode(c, Decode(c, flat, opts...))
}

func rawCodec(label string) codec {
	return codec{
		shape:  ShapeRaw,
		fields: []SubField{{Key: RawKey, Label: label, Kind: KindText}},
		decode: func(flat string, _ *zap.Logger) Values {
			return Raw(flat)
		},
		encode: func(v Values) (string, error) {
			return string(v.(Raw)), nil
		},
	}
}

func positionalCodec(fields []SubField) codec {
	arity := len(fields)
	return codec{
		shape:  ShapePositional,
		fields: fields,
		decode: func(flat string, _ *zap.Logger) Values {
			return decodePositional(flat, arity)
		},
		encode: func(v Values) (string, error) {
			return encodePositional(v.(Positional)), nil
		},
	}
}

func decodePositional(flat string, arity int) Positional {
	tokens := strings.Split(flat, slotDelimiter)
	for len(tokens) < arity {
		tokens = append(tokens, "")
	}
	return Positional(tokens)
}

func encodePositional(p Positional) string {
	return strings.Join(p, slotDelimiter)
}
