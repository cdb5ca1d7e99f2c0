package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"postbox/internal/domain"
)

// register <username>: create an account on the server.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			s, err := dial()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.CreateAccount(domain.Username(args[0]), password); err != nil {
				return err
			}
			defer s.Logout()
			fmt.Println("account created")
			return nil
		},
	}
}
