package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"postbox/internal/domain"
)

// recv: log in and print messages as they arrive.
func recvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Wait for and print incoming messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassword(); err != nil {
				return err
			}
			s, err := dial()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Login(domain.Username(username), password); err != nil {
				return err
			}

			for {
				msg, err := s.RecvMessage()
				if err != nil {
					return err
				}
				to := make([]string, len(msg.Recipients))
				for i, r := range msg.Recipients {
					to[i] = r.String()
				}
				fmt.Printf("[%s -> %s] %s\n", msg.Sender, strings.Join(to, ","), msg.Contents)
			}
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "your username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
