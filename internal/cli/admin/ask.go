package admin

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/templeqa/internal/domain"
)

// AskCmd returns the ask command, which answers locally without a server.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question locally",
		Long: `Answer a question with the local pipeline, without starting the server.

With no question argument, reads one question per line from stdin until EOF.`,
		Args: cobra.ArbitraryArgs,
		RunE: runAsk,
	}

	cmd.Flags().String("at", "", "Reference time in RFC 3339 (default: now)")
	cmd.Flags().String("asker-id", "cli", "Asker identity")
	cmd.Flags().Bool("json", false, "Print the answer, handler and state as JSON")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")

	return cmd
}

type askOutput struct {
	Answer  string `json:"answer"`
	Handler string `json:"handler,omitempty"`
	State   string `json:"state"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	at, _ := cmd.Flags().GetString("at")
	askerID, _ := cmd.Flags().GetString("asker-id")
	asJSON, _ := cmd.Flags().GetBool("json")
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")

	ref, err := parseReferenceTime(at)
	if err != nil {
		return err
	}

	cfg, log, shutdown, err := bootstrap()
	if err != nil {
		return err
	}
	defer shutdown()

	a, err := newApp(ctx, cfg, log, appOptions{noMigrate: noMigrate})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	answer := func(text string) error {
		return printAnswer(out, a.dispatcher.Answer(ctx, domain.NewQuery(text, ref, askerID)), asJSON)
	}

	if len(args) > 0 {
		return answer(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := answer(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseReferenceTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: expected RFC 3339", s)
	}
	return t, nil
}

func printAnswer(w io.Writer, answer domain.Answer, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, answer.Text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(askOutput{Answer: answer.Text, Handler: answer.Handler, State: string(answer.State)})
}
