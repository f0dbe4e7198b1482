package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/layerconf/config"
	"github.com/jonwraymond/layerconf/env"
	"github.com/jonwraymond/layerconf/observe"
	"github.com/jonwraymond/layerconf/resilience"
	"github.com/jonwraymond/layerconf/secret"
)

// options holds the persistent flags.
type options struct {
	dir          string
	defines      []string
	envFile      string
	vault        string
	vaultDir     string
	vaultTimeout time.Duration
	vaultRate    float64
	logLevel     string
	traces       string
	metrics      string
}

// app is what every subcommand works against.
type app struct {
	opts     *options
	engine   *config.Engine
	resolver *secret.Resolver
	obs      observe.Observer
	ctx      context.Context
}

func newRootCommand() *cobra.Command {
	a := &app{opts: &options{}}

	root := &cobra.Command{
		Use:   "confctl",
		Short: "Resolve layered configuration and secrets",
		Long: `confctl resolves configuration keys through the same precedence chain a
test run uses: -D overrides, then environment variables, then secrets for
sensitive keys, then config/default.* and config/<env>.* files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.dir, "dir", ".", "directory containing the config/ source directory")
	f.StringArrayVarP(&a.opts.defines, "define", "D", nil, "process override key=value (repeatable)")
	f.StringVar(&a.opts.envFile, "env-file", "", "dotenv file merged into the overrides before -D")
	f.StringVar(&a.opts.vault, "vault", "noop", "vault implementation: "+strings.Join(secret.DefaultRegistry.List(), ", "))
	f.StringVar(&a.opts.vaultDir, "vault-dir", "/run/secrets", "secrets directory for --vault dir")
	f.DurationVar(&a.opts.vaultTimeout, "vault-timeout", resilience.DefaultTimeout, "per-attempt vault timeout")
	f.Float64Var(&a.opts.vaultRate, "vault-rate", 0, "max vault calls per second, 0 for unlimited")
	f.StringVar(&a.opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	f.StringVar(&a.opts.traces, "traces", "none", "trace exporter: stdout, otlp, jaeger, none")
	f.StringVar(&a.opts.metrics, "metrics", "none", "metrics exporter: stdout, otlp, prometheus, none")

	root.AddCommand(
		newGetCommand(a),
		newGetIntCommand(a),
		newGetBoolCommand(a),
		newEnvCommand(a),
		newSensitiveCommand(a),
		newKeysCommand(a),
		newHealthCommand(a),
		newWatchCommand(a),
	)
	return root
}

// overrides merges the env file and -D flags, -D winning.
func (o *options) overrides() (map[string]string, error) {
	out := make(map[string]string)
	if o.envFile != "" {
		vars, err := godotenv.Read(o.envFile)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		maps.Copy(out, vars)
	}
	for _, d := range o.defines {
		key, value, ok := strings.Cut(d, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid -D %q: want key=value", d)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}

func (a *app) open(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	overrides, err := a.opts.overrides()
	if err != nil {
		return err
	}

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "confctl",
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   a.opts.traces != "none",
			Exporter:  a.opts.traces,
			SamplePct: 1,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  a.opts.metrics != "none",
			Exporter: a.opts.metrics,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   a.opts.logLevel,
		},
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.obs = obs

	vault, err := secret.DefaultRegistry.Create(a.opts.vault, secret.VaultConfig{
		Dir:    a.opts.vaultDir,
		Logger: obs.Logger(),
	})
	if err != nil {
		return errors.Join(err, obs.Shutdown(ctx))
	}

	var guards []resilience.ExecutorOption
	if a.opts.vaultRate > 0 {
		guards = append(guards, resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        a.opts.vaultRate,
			Burst:       1,
			WaitOnLimit: true,
			MaxWait:     a.opts.vaultTimeout,
		})))
	}

	src := env.NewProcess(overrides)
	resolverOpts := []secret.Option{
		secret.WithVault(vault),
		secret.WithExecutor(resilience.DefaultExecutor(a.opts.vaultTimeout, guards...)),
		secret.WithLogger(obs.Logger()),
		secret.WithMetrics(obs.Metrics()),
		secret.WithTracer(obs.Tracer()),
	}
	if cmd.Flags().Changed("vault") && a.opts.vault != "noop" {
		resolverOpts = append(resolverOpts, secret.WithVaultEnabled(true))
	}
	a.resolver = secret.NewResolver(src, resolverOpts...)

	a.engine = config.New(
		config.WithEnvironment(src),
		config.WithLoader(config.NewDirLoader(a.opts.dir)),
		config.WithSecrets(a.resolver),
		config.WithLogger(obs.Logger()),
		config.WithMetrics(obs.Metrics()),
		config.WithTracer(obs.Tracer()),
	)
	a.ctx = observe.WithCorrelation(ctx, "confctl "+cmd.Name())
	return nil
}

// runE closes the app once fn returns, whether or not it failed.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() { err = errors.Join(err, a.close()) }()
		return fn(cmd, args)
	}
}

func (a *app) close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.obs != nil {
		errs = append(errs, a.obs.Shutdown(context.Background()))
	}
	return errors.Join(errs...)
}
