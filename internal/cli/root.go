package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/leasekit/pkg/config"
	"github.com/dmitrymomot/leasekit/pkg/logger"
)

type globalFlags struct {
	envFiles  []string
	logLevel  string
	logFormat string
	debug     bool
}

// NewRootCmd creates the root command of the leasegate CLI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "leasegate",
		Short: "Edge gatekeeper and session lifecycle tools",
		Long: "leasegate screens HTTP traffic in front of an upstream application " +
			"(bot classification, per-IP rate limiting, protected paths, security headers) " +
			"and ships helpers to inspect user-agent verdicts and drive sessions.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if len(flags.envFiles) > 0 {
				return config.LoadEnvFiles(flags.envFiles...)
			}
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load before reading configuration")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults per APP_ENV")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format (text, json); defaults per APP_ENV")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "shorthand for --log-level=debug")

	root.AddCommand(
		newServeCmd(flags),
		newClassifyCmd(),
		newSessionCmd(flags),
	)

	return root
}

func (f *globalFlags) logger(appEnv string) *slog.Logger {
	opts := []logger.Option{
		logger.WithOutput(os.Stderr),
		logger.WithEnvironment(appEnv, "leasegate"),
		logger.WithContextExtractors(logger.RequestIDExtractor()),
	}

	level := f.logLevel
	if f.debug {
		level = "debug"
	}
	if level != "" {
		opts = append(opts, logger.WithLevel(parseLevel(level)))
	}
	if f.logFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(strings.ToLower(f.logFormat))))
	}

	log := logger.New(opts...)
	logger.SetAsDefault(log)
	return log
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
