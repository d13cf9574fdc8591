package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type answerRequest struct {
	Query         string `json:"query"`
	AskerID       string `json:"asker_id,omitempty"`
	ReferenceTime string `json:"reference_time,omitempty"`
}

// AnswerResult is the server's answer to one question.
type AnswerResult struct {
	Answer  string `json:"answer"`
	Handler string `json:"handler,omitempty"`
	State   string `json:"state"`
}

// Ask posts one question to the answering API.
func (c *APIClient) Ask(ctx context.Context, question, referenceTime string) (*AnswerResult, error) {
	resp, err := c.Post(ctx, "/answer", answerRequest{
		Query:         question,
		AskerID:       c.askerID,
		ReferenceTime: referenceTime,
	})
	if err != nil {
		return nil, err
	}
	var result AnswerResult
	if err := resp.decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the temple assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().String("at", "", "Reference time in RFC 3339 (default: server now)")
	cmd.Flags().String("asker-id", "", "Asker identity sent to the server")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	askerID, _ := cmd.Flags().GetString("asker-id")
	outputJSON, _ := cmd.Flags().GetBool("output")

	client, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}
	client.WithAskerID(askerID)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := client.Ask(ctx, strings.Join(args, " "), at)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out, result.Answer)
	return nil
}
