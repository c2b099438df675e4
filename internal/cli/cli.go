package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/simunit/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks bad invocations, which exit with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// settings holds what the persistent flags resolve to. It is filled in by
// the root command before any subcommand runs.
type settings struct {
	file  string
	viper *viper.Viper
}

// NewRootCommand builds the simunit command tree. Command output goes to
// cobra's out writer, logs go to its err writer.
func NewRootCommand() *cobra.Command {
	s := &settings{}

	root := &cobra.Command{
		Use:   "simunit",
		Short: TitleStyle.Render("simunit") + SubtitleStyle.Render(" - unit, parameter and dispatch core of a modular simulation"),
		Long: `simunit loads input decks (HCL, YAML, TOML or CUE), sets up every
registered unit's runtime parameters and options, orders unit callbacks by
their declared dependencies and dispatches to the kernels selected by the
active option values.

Settings are read from flags, SIMUNIT_* environment variables and an
optional simunit.yaml or simunit.toml in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := app.NewViper(s.file)
			if err != nil {
				return usageError(err)
			}
			for _, key := range []string{app.KeyLogLevel, app.KeyLogFormat, app.KeyRestrict} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
					return fmt.Errorf("binding flag %s: %w", key, err)
				}
			}
			s.viper = v
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.file, "config", "", "settings file (default is ./simunit.yaml or ./simunit.toml)")
	flags.String(app.KeyLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String(app.KeyLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringArray(app.KeyRestrict, nil, "Narrow an option axis to some labels, e.g. Reconstruction=plm,ppm. Repeatable.")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newRunCommand(s),
		newValidateCommand(s),
		newOrderCommand(s),
		newGraphCommand(s),
		newDocsCommand(s),
		newParamsCommand(s),
	)
	return root
}

// Execute runs the command tree with args. Errors that are not already an
// ExitError exit with code 1.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand()
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// config resolves the application config for a command. Positional deck
// paths win over the settings' deck list.
func (s *settings) config(deckPaths []string) (*app.Config, error) {
	cfg, err := app.ConfigFromViper(s.viper, deckPaths)
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// newApp builds an App that logs to the command's err writer.
func (s *settings) newApp(cmd *cobra.Command, cfg *app.Config) *app.App {
	return app.NewApp(cmd.ErrOrStderr(), cfg, nil)
}

// setUpApp builds an App and runs its Setup.
func (s *settings) setUpApp(cmd *cobra.Command, deckPaths []string) (*app.App, error) {
	cfg, err := s.config(deckPaths)
	if err != nil {
		return nil, err
	}
	a := s.newApp(cmd, cfg)
	if err := a.Setup(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}
