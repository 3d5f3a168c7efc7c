package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-pluginform/pkg/plugin"
)

func parseCategory(raw string) (plugin.Category, error) {
	c, ok := plugin.ParseCategory(raw)
	if !ok {
		return "", fmt.Errorf("unknown plugin category %q", raw)
	}
	return c, nil
}

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode CATEGORY VALUE",
		Short: "Show the sub-fields of a flat plugin value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			logger := commandLogger(cmd, v)
			defer func() { _ = logger.Sync() }()

			editor := plugin.NewEditor(c, args[1], nil, plugin.WithLogger(logger))
			out := cmd.OutOrStdout()
			fields := editor.SubFields()
			for i, d := range editor.Descriptors("value") {
				fmt.Fprintf(out, "%s\t%s\t%s\n", fields[i].Key, d.DisplayLabel(), describe(d.DefaultValue))
			}
			return nil
		},
	}
}

func newEncodeCmd(v *viper.Viper) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "encode CATEGORY KEY=VALUE...",
		Short: "Build a flat plugin value from sub-field assignments",
		Long: "Build a flat plugin value. Keys are the sub-field keys printed by decode. " +
			"Assignments to list sub-fields append one entry each.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			logger := commandLogger(cmd, v)
			defer func() { _ = logger.Sync() }()

			editor := plugin.NewEditor(c, from, nil, plugin.WithLogger(logger))
			kinds := make(map[string]plugin.Kind)
			for _, field := range editor.SubFields() {
				kinds[field.Key] = field.Kind
			}
			for _, assignment := range args[1:] {
				key, value, ok := strings.Cut(assignment, "=")
				if !ok {
					return fmt.Errorf("expected KEY=VALUE, got %q", assignment)
				}
				if err := assign(editor, kinds, strings.TrimSpace(key), value); err != nil {
					return err
				}
			}
			encoded, err := editor.Encoded()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "flat value to start from")
	return cmd
}

func assign(editor *plugin.Editor, kinds map[string]plugin.Kind, key, value string) error {
	if kinds[key] != plugin.KindPairList {
		_, err := editor.Set(key, value)
		return err
	}
	list, err := editor.List(key)
	if err != nil {
		return err
	}
	list.Append()
	_, err = list.Set(list.Len()-1, value)
	return err
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprint(t)
	}
}
