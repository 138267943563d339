// ABOUTME: Interactive chat REPL and one-shot ask command
// ABOUTME: Loads the catalog into the vector store before the first turn
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harper/shopassist/internal/session"
	"github.com/harper/shopassist/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var (
	chatRefresh bool
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the shopping assistant",
		Long: `Start an interactive conversation with the shopping assistant.

The product catalog is loaded from the local database (synced from the
catalog URL on first use) and embedded into the vector store.

In-chat commands:
  /reset         forget the conversation
  /history       print the conversation so far
  /save <file>   export the transcript (.yaml, .json or .md)
  /exit          leave the chat`,
		Example: `  shopassist chat
  shopassist chat --refresh
  ASSISTANT_AGENT=simple shopassist chat`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().BoolVar(&chatRefresh, "refresh", false, "Re-sync the catalog before chatting")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := a.LoadCatalog(ctx, chatRefresh)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d products. Type /exit to leave.\n\n", n)
	}

	s := a.Sessions.Create()
	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.Sessions, s.ID)
}

// chatLoop reads lines from in and answers them until EOF, /exit or ctx is done.
// Input is read on its own goroutine so cancellation does not wait for a newline.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, sessions *session.Manager, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		if !quiet {
			fmt.Fprint(out, "> ")
		}

		var raw string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			raw = l
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := chatCommand(out, sessions, id, line)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		answer, err := sessions.Respond(ctx, id, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", answer.Content)
	}
}

// chatCommand runs one slash command. done is true when the loop should stop.
func chatCommand(out io.Writer, sessions *session.Manager, id, line string) (done bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		return true, nil
	case "/reset":
		if err := sessions.Reset(id); err != nil {
			return false, err
		}
		fmt.Fprintln(out, "Conversation reset.")
		return false, nil
	case "/history":
		history, err := sessions.History(id)
		if err != nil {
			return false, err
		}
		for _, m := range history {
			fmt.Fprintf(out, "%s: %s\n", m.Role, truncate(m.Content, 200))
		}
		return false, nil
	case "/save":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /save <file>")
		}
		transcript, err := sessions.Transcript(id)
		if err != nil {
			return false, err
		}
		data := sqlite.NewExportData()
		data.Add(id, transcript)
		if err := data.WriteFile(fields[1]); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Saved %d messages to %s\n", len(transcript), fields[1])
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
}

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a single question",
		Long: `Ask a single question in a fresh conversation and print the answer.

The catalog is loaded first, exactly as for chat.`,
		Example: `  shopassist ask "Do you sell backpacks for hiking?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx := cmd.Context()
			if _, err := a.LoadCatalog(ctx, false); err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			s := a.Sessions.Create()
			answer, err := a.Sessions.Respond(ctx, s.ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), answer); ok {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer.Content)
			return nil
		},
	}

	return cmd
}
