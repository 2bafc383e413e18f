package main

import (
	"fmt"
	"os"

	"github.com/absfs/credcrypt/internal/config"
	"github.com/absfs/credcrypt/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	projectBinaryName = "credcrypt"
	projectModulePath = "github.com/absfs/credcrypt"

	exitCodeFailure = 1
	exitCodeConfig  = 2
)

type cliExitError struct {
	code  int
	cause error
}

func (e cliExitError) Error() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

func (e cliExitError) Unwrap() error {
	return e.cause
}

func (e cliExitError) ExitCode() int {
	return e.code
}

func newCLIExitError(code int, cause error) error {
	if cause == nil {
		return nil
	}
	return cliExitError{code: code, cause: cause}
}

func resolveCLIExitCode(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		code := coder.ExitCode()
		if code > 0 {
			return code
		}
	}
	return exitCodeFailure
}

func main() {
	err := executeCLI(os.Args[1:])
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(resolveCLIExitCode(err))
	}
}

func executeCLI(args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

// cliState is filled by the root command before any subcommand runs
type cliState struct {
	envFile  string
	logLevel string
	cfg      config.Config

	// logOutput defaults to stderr
	logOutput zapcore.WriteSyncer
}

func newRootCommand() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           projectBinaryName,
		Short:         "Encrypt credential files and serve them from object storage.",
		Long:          fmt.Sprintf("credcrypt encrypts credential files with AES-256-CBC and serves them from S3 compatible storage.\nModule: %s", projectModulePath),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load()
		},
	}

	root.PersistentFlags().StringVar(&state.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	root.AddCommand(newServeCommand(state))
	root.AddCommand(newEncryptCommand(state))
	root.AddCommand(newDecryptCommand(state))
	root.AddCommand(newFetchCommand(state))
	root.AddCommand(newKeygenCommand())
	return root
}

func (s *cliState) load() error {
	if err := config.LoadDotEnv(s.envFile); err != nil {
		return newCLIExitError(exitCodeConfig, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return newCLIExitError(exitCodeConfig, fmt.Errorf("invalid configuration: %w", err))
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}
	s.cfg = cfg

	if s.logOutput != nil {
		zap.ReplaceGlobals(logger.New(cfg.LogLevel, s.logOutput))
	} else {
		logger.Init(cfg.LogLevel)
	}
	for _, warning := range cfg.Warnings {
		zap.L().Warn(warning)
	}
	zap.L().Debug("configuration loaded",
		zap.String("store", cfg.StoreBackend),
		zap.String("bucket", cfg.Bucket),
		zap.String("key_derivation", cfg.KeyDerivation))
	return nil
}
