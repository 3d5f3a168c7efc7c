// Package store provides the collaborators that persist form entries: an
// in-memory store and a TOML file store using the pingap layout, where each
// entry is a [<section>.<name>] table.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
)

var (
	// ErrNotFound is returned when an entry does not exist.
	ErrNotFound = errors.New("store: entry not found")
	// ErrInvalidName is returned for empty entry names.
	ErrInvalidName = errors.New("store: invalid entry name")
)

// Store is a keyed collection of form entries. Upsert makes every Store a
// form.Upserter.
type Store interface {
	Names(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (model.FormState, error)
	Upsert(ctx context.Context, name string, data model.FormState) error
	Delete(ctx context.Context, name string) error
}

// Bind returns a form.Remover that deletes name from s.
func Bind(s Store, name string) form.Remover {
	return form.RemoveFunc(func(ctx context.Context) error {
		return s.Delete(ctx, name)
	})
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
