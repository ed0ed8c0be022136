package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check registry credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.app.Login(cmd.Context())
			if err != nil {
				return err
			}
			defer c.app.Logout(session)
			if session.Email == "" {
				c.printer.Message("authenticated with the configured token")
				return nil
			}
			c.printer.Message("logged in as " + session.Email)
			return nil
		},
	}
}

func (c *CLI) newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <archive>",
		Short: "Publish a package archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.Push(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printer.Message(msg)
			return nil
		},
	}
}

func (c *CLI) newYankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yank <package> <version>",
		Short: "Hide a published version from new installs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			undo, _ := cmd.Flags().GetBool("undo")
			msg, err := c.app.Yank(cmd.Context(), args[0], args[1], undo)
			if err != nil {
				return err
			}
			c.printer.Message(msg)
			return nil
		},
	}
	cmd.Flags().Bool("undo", false, "Make a yanked version available again")
	return cmd
}
