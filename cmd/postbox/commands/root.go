package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"postbox/internal/client"
)

var (
	serverAddr string
	username   string
	password   string
)

func Execute() error {
	root := &cobra.Command{
		Use:          "postbox",
		Short:        "Store-and-forward messaging client",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1:65432", "server address")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "account password")

	root.AddCommand(registerCmd(), sendCmd(), recvCmd())
	return root.Execute()
}

// dial opens a fresh session against the configured server.
func dial() (*client.Session, error) {
	s, err := client.Connect(serverAddr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", serverAddr, err)
	}
	return s, nil
}

func requirePassword() error {
	if password == "" {
		return fmt.Errorf("password required (-p)")
	}
	return nil
}
