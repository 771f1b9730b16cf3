package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	mailadmin "github.com/mailadmin/client-go"
	"github.com/mailadmin/client-go/internal/config"
	"github.com/mailadmin/client-go/internal/logging"
)

// globalFlags holds flags shared by every command. Zero values mean
// "not set on the command line".
type globalFlags struct {
	configFile string
	envFile    string
	baseURL    string
	timeout    time.Duration
	logLevel   string
	logFormat  string
	logFile    string
}

// app carries state built in PersistentPreRunE for subcommands.
type app struct {
	flags  globalFlags
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
	client *mailadmin.Client
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{in: in, out: out, errOut: errOut}
	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	defer a.close()
	return cmd.ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailadminctl",
		Short: "Credential tooling for the mail-admin console API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.configFile, "config", "", "config file (default ./mailadmin.yaml)")
	f.StringVar(&a.flags.envFile, "env-file", "", "env file to load (default .env)")
	f.StringVar(&a.flags.baseURL, "base-url", "", "API base URL")
	f.DurationVar(&a.flags.timeout, "timeout", 0, "HTTP request timeout")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.flags.logFormat, "log-format", "", "log format (console, json)")
	f.StringVar(&a.flags.logFile, "log-file", "", "also write JSON logs to this rotating file")

	cmd.AddCommand(
		a.newPublicKeyCmd(),
		a.newEncryptCmd(),
		a.newHashCmd(),
		a.newVerifyCmd(),
		a.newLoginCmd(),
		a.newPasswdCmd(),
		a.newWhoamiCmd(),
	)
	return cmd
}

// setup loads config, applies flag overrides, and builds the logger and client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), config.Options{
		ConfigFile: a.flags.configFile,
		EnvFile:    a.flags.envFile,
	})
	if err != nil {
		return err
	}

	if a.flags.baseURL != "" {
		cfg.APIBaseURL = a.flags.baseURL
	}
	if a.flags.timeout != 0 {
		cfg.Timeout = a.flags.timeout
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.logFile != "" {
		cfg.Log.File = a.flags.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: a.errOut,
	})
	if err != nil {
		return err
	}
	a.logger, a.closer = logger, closer

	client, err := mailadmin.New(
		mailadmin.WithBaseURL(cfg.APIBaseURL),
		mailadmin.WithTimeout(cfg.Timeout),
		mailadmin.WithKeyFetchTimeout(cfg.KeyFetchTimeout),
		mailadmin.WithRetries(cfg.Retries),
		mailadmin.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// printJSON writes v to stdout as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
