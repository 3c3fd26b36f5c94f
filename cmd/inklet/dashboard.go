package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inklet-app/inklet/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the real-time sync status dashboard",
	Long: `Start a WebSocket dashboard server broadcasting sync status updates.

Every status transition (state, offline flag, pending-changes counter,
last sync time) is pushed to connected clients, so UIs can render the
sync indicator without polling.

Example usage:
  inklet dashboard               # Start on the configured port
  inklet dashboard --port 9000   # Start on a custom port

Connect with a WebSocket client:
  ws://localhost:8799/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := openApp(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		defer app.Close()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = app.cfg.Dashboard.Port
		}

		config := &dashboard.Config{
			Port:   port,
			Logger: log.New(os.Stderr, "[dashboard] ", log.LstdFlags),
		}
		server := dashboard.NewServer(app.status, config)

		if err := server.Start(); err != nil {
			fatal("failed to start dashboard: %v", err)
		}

		fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Status snapshot: http://localhost:%d/status\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down dashboard server...")
		if err := server.Stop(); err != nil {
			fatal("shutdown failed: %v", err)
		}
		fmt.Println("Dashboard server stopped")
	},
}

func init() {
	dashboardCmd.Flags().IntP("port", "p", 0, "port to listen on (default: configured port)")

	rootCmd.AddCommand(dashboardCmd)
}
