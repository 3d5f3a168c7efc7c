// Package app wires the pluginform commands.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-pluginform/pkg/descriptor"
	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/store"
)

const envPrefix = "PLUGINFORM"

// NewRootCmd builds the command tree. Flags are bound to viper so every
// setting can also come from PLUGINFORM_* environment variables.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "pluginform",
		Short:         "Edit pingap plugin configuration from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "pingap.toml", "TOML configuration file")
	flags.StringP("form", "f", "plugin", "built-in form name or path to a form definition")
	flags.String("schema", "", "component schema to use when --form is an OpenAPI document")
	flags.String("section", "", "configuration table holding the entries (defaults to the form's section)")
	flags.Duration("notice-ttl", form.DefaultNoticeTTL, "how long banners stay visible")
	flags.Bool("debug", false, "enable debug logging")
	for _, name := range []string{"config", "form", "schema", "section", "notice-ttl", "debug"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(
		newListCmd(v),
		newEditCmd(v),
		newCreateCmd(v),
		newRemoveCmd(v),
		newDecodeCmd(v),
		newEncodeCmd(v),
	)
	return root
}

// env is what every entry command needs: a logger, the form and the store.
type env struct {
	logger    *zap.Logger
	form      descriptor.Form
	store     *store.TOMLStore
	noticeTTL time.Duration
}

// newLogger writes console-encoded logs to w: Warn and above normally, every
// level with caller info when debug is set.
func newLogger(debug bool, w io.Writer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zapcore.WarnLevel
	var opts []zap.Option
	if debug {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
		opts = append(opts, zap.AddCaller())
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, opts...)
}

func commandLogger(cmd *cobra.Command, v *viper.Viper) *zap.Logger {
	return newLogger(v.GetBool("debug"), cmd.ErrOrStderr())
}

func loadEnv(cmd *cobra.Command, v *viper.Viper) (*env, error) {
	ctx := cmd.Context()
	logger := commandLogger(cmd, v)
	configPath := v.GetString("config")

	opts := []descriptor.Option{
		descriptor.WithLogger(logger),
		descriptor.WithOptionSource("upstreams", namesSource(ctx, configPath, "upstreams")),
		descriptor.WithOptionSource("plugins", namesSource(ctx, configPath, "plugins")),
	}
	f, err := loadForm(ctx, v.GetString("form"), v.GetString("schema"), opts)
	if err != nil {
		return nil, err
	}

	section := v.GetString("section")
	if section == "" {
		section = f.Section
	}
	logger.Debug("environment ready",
		zap.String("config", configPath),
		zap.String("form", f.Name),
		zap.String("section", section),
	)
	return &env{
		logger:    logger,
		form:      f,
		store:     store.NewTOMLStore(configPath, store.WithSection(section), store.WithLogger(logger)),
		noticeTTL: v.GetDuration("notice-ttl"),
	}, nil
}

func loadForm(ctx context.Context, name, schema string, opts []descriptor.Option) (descriptor.Form, error) {
	if schema != "" {
		data, err := readFile(name)
		if err != nil {
			return descriptor.Form{}, err
		}
		return descriptor.FromOpenAPI(ctx, data, schema, opts...)
	}
	for _, builtin := range descriptor.BuiltinNames() {
		if name == builtin {
			return descriptor.Builtin(name, opts...)
		}
	}
	return descriptor.LoadFile(name, opts...)
}

func namesSource(ctx context.Context, path, section string) descriptor.OptionSource {
	return func() (model.OptionList, error) {
		names, err := store.NewTOMLStore(path, store.WithSection(section)).Names(ctx)
		if err != nil {
			return model.OptionList{}, err
		}
		return model.StringOptions(names...), nil
	}
}

// withValues returns the form items seeded with a stored entry.
func withValues(items []model.FieldDescriptor, data model.FormState) []model.FieldDescriptor {
	out := make([]model.FieldDescriptor, len(items))
	for i, item := range items {
		if value, ok := data[item.ID]; ok {
			item.DefaultValue = value
		}
		out[i] = item
	}
	return out
}

func (e *env) controller(items []model.FieldDescriptor, opts ...form.Option) *form.Controller {
	base := []form.Option{
		form.WithLogger(e.logger),
		form.WithNoticeTTL(e.noticeTTL),
	}
	return form.NewController(items, e.store, append(base, opts...)...)
}
