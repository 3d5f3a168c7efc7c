package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-pluginform/pkg/model"
)

const (
	// DefaultSection is the table plugin entries live under.
	DefaultSection     = "plugins"
	defaultLockTimeout = time.Second
	lockRetryDelay     = 100 * time.Millisecond
)

// TOMLStore stores entries as tables of a TOML file. Writes hold a lock on
// <path>.lock and replace the file atomically; other sections and unrelated
// keys are preserved.
type TOMLStore struct {
	path        string
	section     string
	logger      *zap.Logger
	lockTimeout time.Duration
}

// Option configures a TOMLStore.
type Option func(*TOMLStore)

// WithSection selects the table entries are stored under.
func WithSection(section string) Option {
	return func(s *TOMLStore) {
		if section != "" {
			s.section = section
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *TOMLStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLockTimeout bounds how long writes wait for the file lock.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *TOMLStore) {
		if timeout > 0 {
			s.lockTimeout = timeout
		}
	}
}

// NewTOMLStore opens the store backed by path. The file is created on the
// first write.
func NewTOMLStore(path string, opts ...Option) *TOMLStore {
	s := &TOMLStore{
		path:        filepath.Clean(path),
		section:     DefaultSection,
		logger:      zap.NewNop(),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Path returns the backing file.
func (s *TOMLStore) Path() string {
	return s.path
}

// Section returns the table entries are stored under.
func (s *TOMLStore) Section() string {
	return s.section
}

// Names lists entry names in sorted order.
func (s *TOMLStore) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	config, err := readTOML(s.path)
	if err != nil {
		return nil, err
	}
	table, err := s.table(config)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(table))
	for name, entry := range table {
		if _, ok := entry.(map[string]any); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load returns the entry name as form values.
func (s *TOMLStore) Load(ctx context.Context, name string) (model.FormState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	config, err := readTOML(s.path)
	if err != nil {
		return nil, err
	}
	table, err := s.table(config)
	if err != nil {
		return nil, err
	}
	entry, ok := table[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, s.section, name)
	}
	return toFormState(entry), nil
}

// Upsert writes data as the table <section>.<name>. Nil values are omitted.
func (s *TOMLStore) Upsert(ctx context.Context, name string, data model.FormState) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	return s.update(ctx, func(table map[string]any) error {
		table[name] = fromFormState(data)
		s.logger.Debug("upserted entry", zap.String("section", s.section), zap.String("name", name))
		return nil
	})
}

// Delete removes the table <section>.<name>.
func (s *TOMLStore) Delete(ctx context.Context, name string) error {
	return s.update(ctx, func(table map[string]any) error {
		if _, ok := table[name]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrNotFound, s.section, name)
		}
		delete(table, name)
		s.logger.Debug("deleted entry", zap.String("section", s.section), zap.String("name", name))
		return nil
	})
}

func (s *TOMLStore) update(ctx context.Context, fn func(map[string]any) error) error {
	fileLock := flock.New(s.path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("store: acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("store: acquire lock: timeout after %v", s.lockTimeout)
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("release lock", zap.String("path", s.path), zap.Error(err))
		}
	}()

	config, err := readTOML(s.path)
	if err != nil {
		return err
	}
	table, err := s.table(config)
	if err != nil {
		return err
	}
	if err := fn(table); err != nil {
		return err
	}
	config[s.section] = table
	return writeTOML(s.path, config)
}

func (s *TOMLStore) table(config map[string]any) (map[string]any, error) {
	raw, ok := config[s.section]
	if !ok {
		return make(map[string]any), nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("store: %s is not a table", s.section)
	}
	return table, nil
}

func readTOML(path string) (map[string]any, error) {
	// #nosec G304 -- path comes from the operator's configuration.
	content, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	if len(content) == 0 {
		return make(map[string]any), nil
	}
	var config map[string]any
	if err := toml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}

func writeTOML(path string, config map[string]any) error {
	content, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("store: marshal toml: %w", err)
	}
	if err := atomicWrite(path, content, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func atomicWrite(path string, content []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// toFormState converts decoded TOML values to form values: integers become
// float64 and arrays become string lists.
func toFormState(entry map[string]any) model.FormState {
	state := make(model.FormState, len(entry))
	for key, value := range entry {
		switch typed := value.(type) {
		case int64:
			state[key] = float64(typed)
		default:
			state[key] = model.NormalizeValue(typed)
		}
	}
	return state
}

// fromFormState drops nil values and writes integral numbers as integers.
func fromFormState(data model.FormState) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		switch typed := value.(type) {
		case nil:
			continue
		case float64:
			if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
				out[key] = int64(typed)
				continue
			}
			out[key] = typed
		case []string:
			out[key] = append([]string{}, typed...)
		default:
			out[key] = typed
		}
	}
	return out
}
