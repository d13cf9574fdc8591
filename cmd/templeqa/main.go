package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/templeqa/internal/cli"
	"github.com/cloo-solutions/templeqa/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "templeqa",
		Short: "templeqa CLI - ask the temple assistant",
		Long: `templeqa sends questions to a running templeqad server.

Environment variables:
  TEMPLEQA_API_KEY   API key, when the server requires one
  TEMPLEQA_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StatusCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
