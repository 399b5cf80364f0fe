// Command evermem-server runs the EverMem HTTP API.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evermem/evermem-go/internal/server"
	"github.com/evermem/evermem-go/pkg/companion"
	"github.com/evermem/evermem-go/pkg/core"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	var configPath string
	var assistantBinary string

	rootCmd := &cobra.Command{
		Use:   "evermem-server",
		Short: "HTTP API for the EverMem memory companion",
		Long: `evermem-server exposes the memory companion over HTTP: persona
profiles, uploaded memories, user facts, and the conversation engine.

Configuration comes from the environment (or a .env file); pass --config
to load a JSON configuration file instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *core.Config
			var err error
			if configPath != "" {
				cfg, err = core.LoadConfigFromJSON(configPath)
			} else {
				cfg, err = core.LoadConfigFromEnv()
			}
			if err != nil {
				return err
			}

			client, err := companion.NewClient(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			srv, err := server.New(client, cfg.Server, &server.Options{
				AssistantBinary: assistantBinary,
			})
			if err != nil {
				return err
			}

			log.Infof("evermem-server %s listening on %s", version, cfg.Server.Addr())
			return srv.Run()
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a JSON configuration file")
	rootCmd.Flags().StringVar(&assistantBinary, "assistant-binary", "", "voice assistant executable (default evermem-voice)")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("evermem-server %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
