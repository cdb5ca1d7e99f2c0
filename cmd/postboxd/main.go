// postboxd is the postbox server daemon.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"postbox/internal/server"
	"postbox/internal/server/config"
)

func main() {
	var (
		cfgFile  string
		address  string
		logLevel string
	)

	root := &cobra.Command{
		Use:   "postboxd",
		Short: "Store-and-forward messaging server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if address != "" {
				cfg.Address = address
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
				if err := cfg.FixupAndValidate(); err != nil {
					return err
				}
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			srv.Halt()
			return nil
		},
		SilenceUsage: true,
	}

	root.Flags().StringVarP(&cfgFile, "config", "f", "", "configuration file (TOML)")
	root.Flags().StringVar(&address, "address", "", "listen address (overrides config)")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
