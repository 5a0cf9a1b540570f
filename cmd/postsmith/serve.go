package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/postsmith/internal/server"
	"github.com/jonathan/postsmith/internal/session"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing session-scoped generate and regenerate endpoints.
Each session keeps its own regeneration cache in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			history, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			deps := server.Deps{
				Runner:   a.orchestrator(history),
				Sessions: session.NewRegistry(),
				Logger:   a.log,
			}
			if history != nil {
				defer history.Close()
				deps.History = history
			}

			return server.New(server.Config{Port: a.cfg.Server.Port}, deps).Start()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (default from config)")
	return cmd
}
