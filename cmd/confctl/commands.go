package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/layerconf/config"
	"github.com/jonwraymond/layerconf/health"
	"github.com/jonwraymond/layerconf/observe"
)

// errUnhealthy makes the health command exit non-zero.
var errUnhealthy = errors.New("unhealthy")

func newGetCommand(a *app) *cobra.Command {
	var explain, reveal bool

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the resolved value of a key",
		Long: `Print the resolved value of a key. Values of sensitive keys are redacted
unless --reveal is given.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, stage, ok := a.engine.Lookup(a.ctx, key)
			if !ok {
				_, err := a.engine.Get(a.ctx, key)
				if err == nil {
					err = &config.KeyNotFoundError{Key: key}
				}
				return err
			}
			if a.engine.IsSensitive(key) && !reveal {
				value = observe.Redacted
			}
			if explain {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", value, stage)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "also print the precedence stage that produced the value")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print sensitive values in clear")
	return cmd
}

func newGetIntCommand(a *app) *cobra.Command {
	var def int

	cmd := &cobra.Command{
		Use:   "get-int KEY",
		Short: "Print a key parsed as an integer",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("default") {
				fmt.Fprintln(cmd.OutOrStdout(), a.engine.GetIntOr(a.ctx, args[0], def))
				return nil
			}
			n, err := a.engine.GetInt(a.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		}),
	}
	cmd.Flags().IntVar(&def, "default", 0, "value printed when the key is absent or malformed")
	return cmd
}

func newGetBoolCommand(a *app) *cobra.Command {
	var def bool

	cmd := &cobra.Command{
		Use:   "get-bool KEY",
		Short: "Print a key parsed as a boolean",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("default") {
				fmt.Fprintln(cmd.OutOrStdout(), a.engine.GetBoolOr(a.ctx, args[0], def))
				return nil
			}
			b, err := a.engine.GetBool(a.ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&def, "default", false, "value printed when the key is absent or malformed")
	return cmd
}

func newEnvCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print the active environment and the files merged for it",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.engine.Initialize(a.ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "environment: %s\n", a.engine.EnvironmentName())
			fmt.Fprintf(out, "loaded: %s\n", a.engine.LoadedEnvironment())
			for _, src := range a.engine.Sources() {
				fmt.Fprintf(out, "source: %s\n", src)
			}
			return nil
		}),
	}
}

func newSensitiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sensitive KEY...",
		Short: "Report whether keys are resolved through the secret resolver",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			for _, key := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", key, a.engine.IsSensitive(key))
			}
			return nil
		}),
	}
}

func newKeysCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the merged file table with each key's origin",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			entries, err := a.engine.Keys(a.ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, e.Value, e.Source)
			}
			return tw.Flush()
		}),
	}
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run the config and secrets health checks",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := a.engine.Initialize(a.ctx); err != nil {
				return err
			}
			agg := health.NewAggregator()
			agg.Register(a.engine.Checker())
			agg.Register(a.resolver.Checker())

			report := agg.Run(a.ctx)
			out := cmd.OutOrStdout()
			for _, name := range report.Names() {
				r := report.Results[name]
				fmt.Fprintf(out, "%s\t%s\t%s\n", name, r.Status, r.Message)
			}
			fmt.Fprintf(out, "overall\t%s\n", report.Status)
			if report.Status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		}),
	}
}

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch KEY",
		Short: "Print a key's value every time the source files change",
		Args:  cobra.ExactArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			key := args[0]
			out := cmd.OutOrStdout()
			show := func() {
				value, stage, ok := a.engine.Lookup(a.ctx, key)
				if !ok {
					fmt.Fprintf(out, "%s\t<absent>\n", key)
					return
				}
				if a.engine.IsSensitive(key) {
					value = observe.Redacted
				}
				fmt.Fprintf(out, "%s\t%s\t(%s)\n", key, value, stage)
			}

			if err := a.engine.Initialize(a.ctx); err != nil {
				return err
			}
			show()

			w := config.NewWatcher(a.engine, filepath.Join(a.opts.dir, config.DefaultSourceDir),
				config.WithDebounce(debounce),
				config.OnReload(func(err error) {
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "reload: %v\n", err)
						return
					}
					show()
				}),
			)
			return w.Run(a.ctx)
		}),
	}
	cmd.Flags().DurationVar(&debounce, "debounce", config.DefaultDebounce, "quiet period before a reload")
	return cmd
}
