package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"postbox/internal/domain"
)

// send <recipient>[,<recipient>...] <message>: deliver a message.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <recipient>[,<recipient>...] <message>",
		Short: "Send a message to one or more users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			var recipients []domain.Username
			for _, r := range strings.Split(args[0], ",") {
				recipients = append(recipients, domain.Username(strings.TrimSpace(r)))
			}

			s, err := dial()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Login(domain.Username(username), password); err != nil {
				return err
			}
			defer s.Logout()

			if err := s.SendMessage(recipients, args[1]); err != nil {
				return err
			}
			fmt.Println("sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "your username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
