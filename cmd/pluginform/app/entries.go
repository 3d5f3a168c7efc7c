package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/store"
	"github.com/goliatone/go-pluginform/pkg/tui"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the entries of the configured section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			names, err := e.store.Names(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newEditCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit an existing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			name := args[0]
			data, err := e.store.Load(ctx, name)
			if err != nil {
				return err
			}
			ctrl := e.controller(withValues(e.form.Items, data),
				form.WithName(name),
				form.WithRemover(store.Bind(e.store, name)),
			)
			return e.run(cmd, ctrl, fmt.Sprintf("%s: %s", e.form.Title, name))
		},
	}
}

func newCreateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			names, err := e.store.Names(ctx)
			if err != nil {
				return err
			}
			ctrl := e.controller(e.form.Items, form.WithCreateMode(names))
			return e.run(cmd, ctrl, e.form.Title)
		},
	}
}

func newRemoveCmd(v *viper.Viper) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv(cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			name := args[0]
			data, err := e.store.Load(ctx, name)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := tui.NewSurveyDriver(cmd.OutOrStdout()).Confirm(ctx, tui.ConfirmConfig{
					Message: fmt.Sprintf("Remove %s from [%s]?", name, e.store.Section()),
				})
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			ctrl := e.controller(withValues(e.form.Items, data),
				form.WithName(name),
				form.WithRemover(store.Bind(e.store, name)),
			)
			if err := ctrl.OpenRemoveDialog(); err != nil {
				return err
			}
			if err := ctrl.ConfirmRemove(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNotice(noticeOf(ctrl)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (e *env) run(cmd *cobra.Command, ctrl *form.Controller, title string) error {
	session := tui.NewSession(ctrl,
		tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
		tui.WithLogger(e.logger),
		tui.WithTitle(title),
	)
	outcome, err := session.Run(cmd.Context())
	if err != nil {
		return err
	}
	e.logger.Debug("session finished",
		zap.String("outcome", outcome.String()),
		zap.String("config", e.store.Path()),
	)
	if outcome == tui.OutcomeCancelled {
		fmt.Fprintln(cmd.OutOrStdout(), "no changes written")
	}
	return nil
}

func noticeOf(ctrl *form.Controller) form.Notice {
	n, _ := ctrl.Notice()
	return n
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
