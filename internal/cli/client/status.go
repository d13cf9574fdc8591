package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResult is the temple's current open or closed state.
type StatusResult struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Status fetches the temple's current state.
func (c *APIClient) Status(ctx context.Context) (*StatusResult, error) {
	resp, err := c.Get(ctx, "/status")
	if err != nil {
		return nil, err
	}
	var result StatusResult
	if err := resp.decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the temple is open right now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			client, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			result, err := client.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return json.NewEncoder(out).Encode(result)
			}
			fmt.Fprintf(out, "%s (as of %s)\n", result.Status, result.Time)
			return nil
		},
	}
}
