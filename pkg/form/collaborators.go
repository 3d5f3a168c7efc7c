package form

import (
	"context"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Upserter persists an entry. data is a copy the callee may keep.
type Upserter interface {
	Upsert(ctx context.Context, name string, data model.FormState) error
}

// Remover deletes the entry the form was opened for.
type Remover interface {
	Remove(ctx context.Context) error
}

// UpsertFunc adapts a function to Upserter.
type UpsertFunc func(ctx context.Context, name string, data model.FormState) error

func (fn UpsertFunc) Upsert(ctx context.Context, name string, data model.FormState) error {
	return fn(ctx, name, data)
}

// RemoveFunc adapts a function to Remover.
type RemoveFunc func(ctx context.Context) error

func (fn RemoveFunc) Remove(ctx context.Context) error {
	return fn(ctx)
}
