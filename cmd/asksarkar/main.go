// Command asksarkar runs the RTI assistant service and its chat client.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asksarkar",
	Short: "asksarkar - conversational RTI application assistant",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE:  runServe,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a running server over WebSocket",
	RunE:  runChat,
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show today's generation quota usage",
	RunE:  runUsage,
}

var resetUsageCmd = &cobra.Command{
	Use:   "reset-usage",
	Short: "Reset today's generation quota counter",
	Long: `Reset today's generation quota counter in the record store.

A running server keeps its own cached counter and does not see this reset.
To reset a live server, call POST /v1/usage/reset on it instead.`,
	RunE: runResetUsage,
}

var (
	addrFlag    string
	apiKeyFlag  string
	sessionFlag string
)

func init() {
	chatCmd.Flags().StringVar(&addrFlag, "addr", "ws://localhost:8080/ws", "WebSocket server address")
	chatCmd.Flags().StringVar(&apiKeyFlag, "api-key", os.Getenv("API_KEY"), "API key for the hello handshake")
	chatCmd.Flags().StringVar(&sessionFlag, "session", "", "Resume an existing session")
	rootCmd.AddCommand(serveCmd, chatCmd, usageCmd, resetUsageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("Command failed", "err", err)
		os.Exit(1)
	}
}
