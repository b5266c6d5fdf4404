package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/property-underwriting/internal/config"
	"github.com/iwvelando/property-underwriting/internal/proforma"
	"github.com/iwvelando/property-underwriting/internal/server"
	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/output"
	"github.com/iwvelando/property-underwriting/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	logLevel string
	envFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "underwriting",
		Short:         "Redevelopment underwriting calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(opts.envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional file of UNDERWRITING_* overrides")

	cmd.AddCommand(newEvaluateCmd(opts), newServeCmd(opts), newVersionCmd())
	return cmd
}

type evaluateCmd struct {
	root         *rootOptions
	configPath   string
	outputFormat string
}

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	ec := &evaluateCmd{root: root}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a scenario file and print the pro-forma",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.configPath, "config", constants.DefaultConfigFile, "path to scenario file")
	cmd.Flags().StringVar(&ec.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	return cmd
}

func (ec *evaluateCmd) run(cmd *cobra.Command, args []string) error {
	conf, err := config.LoadConfiguration(ec.configPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", ec.configPath, err)
		return err
	}

	logger, err := initializeLogger(conf.Logging, ec.root.logLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if ec.outputFormat != "" {
		outputFormat = ec.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main.evaluate"))
		return err
	}

	result, err := proforma.GetProForma(logger, *conf)
	if err != nil {
		logger.Error("failed to compute pro-forma",
			zap.String("op", "main.evaluate"),
			zap.Error(err),
		)
		return err
	}

	for _, warning := range result.Warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.evaluate"),
		)
	}

	return output.Write(cmd.OutOrStdout(), outputFormat, result.Report())
}

type serveCmd struct {
	root             *rootOptions
	serverConfigPath string
	address          string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	sc := &serveCmd{root: root}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive underwriting form",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&sc.address, "address", "", "listen address override, e.g. :8080")

	return cmd
}

func (sc *serveCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := server.LoadConfig(sc.serverConfigPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", sc.serverConfigPath, err)
		return err
	}
	if sc.address != "" {
		cfg.Address = sc.address
	}

	logger, err := initializeLogger(cfg.Logging, sc.root.logLevel)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.NewWebAPI(logger, cfg, version).Start(ctx); err != nil {
		logger.Error("server stopped",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

