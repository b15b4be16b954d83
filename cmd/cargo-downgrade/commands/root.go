// Package commands implements the CLI commands for cargo-downgrade.
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/render"
	"github.com/obraunsdorf/cargo-downgrade/internal/app"
	"github.com/obraunsdorf/cargo-downgrade/internal/build"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for cargo-downgrade.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Downgrade(ctx context.Context, opts app.Options) error
}

// jsonSwitcher is implemented by loggers that can emit JSON.
type jsonSwitcher interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance. logger receives --json-logs when it supports it.
func New(a Application, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:   "cargo-downgrade [CARGO_LOCK]",
		Short: "Downgrade Cargo.lock dependencies to the versions published before a date",
		Long: `cargo-downgrade looks up every selected crate on crates.io and prints the
newest version that was published before the given date and is not yanked.

By default all transitive dependencies of the workspace in CARGO_LOCK are
selected. The output can be fed to "cargo update -p <name> --precise <version>"
or pasted into Cargo.toml.`,
		Example: `  cargo-downgrade --date "22 Feb 2021 23:16:09 GMT"
  cargo-downgrade path/to/Cargo.lock --date "Mon, 22 Feb 2021 23:16:09 GMT" -l 1 --pin
  cargo-downgrade --date "22 Feb 2021 23:16:09 GMT" -c serde,tokio -o json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	c.addDowngradeFlags(rootCmd)
	rootCmd.RunE = c.runDowngrade
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) addDowngradeFlags(cmd *cobra.Command) {
	formats := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		formats = append(formats, string(f))
	}

	flags := cmd.Flags()
	flags.String("date", "", `Cutoff date in RFC 2822 format, e.g. "22 Feb 2021 23:16:09 GMT"`)
	flags.IntP("dependency-level", "l", 0, "Only downgrade dependencies at exactly this depth (1 = direct dependencies)")
	flags.StringP("crates", "c", "", "Comma-separated list of crates to downgrade instead of reading CARGO_LOCK")
	flags.Bool("pin", false, `Print exact requirements (name = "=version")`)
	flags.StringP("output", "o", string(render.FormatLock), "Output format: "+strings.Join(formats, ", "))
	flags.String("registry-url", domain.DefaultRegistryURL, "Base URL of the crates.io crate API")
	flags.Duration("rate-interval", domain.DefaultRequestInterval, "Minimum time between two registry requests (0 disables the limit)")
	flags.Duration("timeout", domain.DefaultRequestTimeout, "Timeout of a single registry request")
	flags.Bool("trace", false, "Log the duration of every registry request")
	flags.Bool("json-logs", false, "Write logs as JSON")

	_ = cmd.MarkFlagRequired("date")
	cmd.MarkFlagsMutuallyExclusive("dependency-level", "crates")
}

func (c *CLI) runDowngrade(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		if l, ok := c.logger.(jsonSwitcher); ok {
			l.SetJSON(true)
		}
	}

	return c.app.Downgrade(cmd.Context(), opts)
}

//nolint:cyclop // flag collection
func optionsFromFlags(cmd *cobra.Command, args []string) (app.Options, error) {
	flags := cmd.Flags()
	var opts app.Options

	if len(args) > 0 {
		opts.LockfilePath = args[0]
	}

	opts.Date, _ = flags.GetString("date")

	if flags.Changed("dependency-level") {
		raw, _ := flags.GetInt("dependency-level")
		level, err := domain.ParseLevel(raw)
		if err != nil {
			return app.Options{}, err
		}
		opts.Level = level
	}

	if flags.Changed("crates") {
		raw, _ := flags.GetString("crates")
		opts.Crates = []string{raw}
	}

	opts.Pin, _ = flags.GetBool("pin")
	opts.Format, _ = flags.GetString("output")
	opts.Trace, _ = flags.GetBool("trace")

	opts.Registry.BaseURL, _ = flags.GetString("registry-url")
	opts.Registry.Interval, _ = flags.GetDuration("rate-interval")
	opts.Registry.Timeout, _ = flags.GetDuration("timeout")

	return opts, nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
