package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/app"
)

func fetchFlags(cmd *cobra.Command) {
	cmd.Flags().String("version", "", "Version constraint, e.g. \"~> 1.2\"")
	cmd.Flags().Bool("pre", false, "Allow prerelease versions")
}

func fetchOptions(cmd *cobra.Command) app.FetchOptions {
	constraint, _ := cmd.Flags().GetString("version")
	pre, _ := cmd.Flags().GetBool("pre")
	return app.FetchOptions{Constraint: constraint, Prerelease: pre}
}

func (c *CLI) newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [packages...]",
		Short: "Fetch packages and their dependencies into the local cache",
		Long: "Fetch packages and their dependencies into the local cache.\n" +
			"Without arguments the dependencies of the current project are fetched.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.app.Fetch(cmd.Context(), args, fetchOptions(cmd))
			c.printer.Installs(results)
			return err
		},
	}
	fetchFlags(cmd)
	return cmd
}

func (c *CLI) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <package>",
		Short: "Fetch a package and add it to the project dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := c.app.Add(cmd.Context(), args[0], fetchOptions(cmd))
			if err != nil {
				return err
			}
			c.printer.Message(fmt.Sprintf("added %s", spec))
			return nil
		},
	}
	fetchFlags(cmd)
	return cmd
}

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <packages...>",
		Short: "List the versions published on the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := c.app.List(cmd.Context(), args)
			c.printer.Listings(listings)
			return err
		},
	}
}

func (c *CLI) newFetchedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetched [packages...]",
		Short: "List the versions held by the local cache",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing, err := c.app.Fetched(cmd.Context(), args)
			if err != nil {
				return err
			}
			c.printer.Versions(listing)
			return nil
		},
	}
}

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"compile"},
		Short:   "Install the project dependencies into .parcel/deps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pre, _ := cmd.Flags().GetBool("pre")
			rep, err := c.app.Sync(cmd.Context(), pre)
			if rep != nil {
				c.printer.Sync(rep)
			}
			return err
		},
	}
	cmd.Flags().Bool("pre", false, "Allow prerelease versions")
	return cmd
}

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every package from the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Clean(cmd.Context())
		},
	}
}
