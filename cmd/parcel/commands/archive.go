package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/parcel/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [dir]",
		Short: "Build a package archive from a parcel.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			pkg, err := c.app.Build(cmd.Context(), dir)
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				c.printer.Problems(verr)
			}
			if err != nil {
				return err
			}
			c.printer.Archive(pkg)
			return nil
		},
	}
}

func (c *CLI) newUnpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack <archive>",
		Short: "Extract a package archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("target")
			u, err := c.app.Unpack(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			c.printer.Unpacked(u)
			return nil
		},
	}
	cmd.Flags().StringP("target", "t", "", "Directory to extract into (default: current directory)")
	return cmd
}
