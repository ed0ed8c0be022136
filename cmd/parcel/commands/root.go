// Package commands implements the CLI commands for the parcel package manager.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/build"
	"go.trai.ch/parcel/internal/ui/report"
)

// CLI represents the command line interface for parcel.
type CLI struct {
	app     *app.App
	printer *report.Printer
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "parcel",
		Short:         "A package manager client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		printer: report.New(os.Stdout),
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(
		c.newFetchCmd(),
		c.newAddCmd(),
		c.newListCmd(),
		c.newFetchedCmd(),
		c.newBuildCmd(),
		c.newUnpackCmd(),
		c.newSyncCmd(),
		c.newLoginCmd(),
		c.newPushCmd(),
		c.newYankCmd(),
		c.newCleanCmd(),
		c.newVersionCmd(),
	)

	return c
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

// SetOutput redirects reports and cobra output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.printer = report.New(w)
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
