package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/cloo-solutions/templeqa/internal/cli"
	"github.com/cloo-solutions/templeqa/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "templeqad",
		Short: "Temple question-answering daemon",
		Long:  "templeqad runs the answering API, builds the document index and answers questions locally",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IndexCmd())
	rootCmd.AddCommand(admin.AskCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
