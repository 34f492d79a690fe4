package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/datapulse/internal/chatlog"
	"github.com/leapstack-labs/datapulse/internal/cli/output"
)

const chatPrompt = "you> "

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask the data architect assistant about your schema",
		Long: `Start an interactive chat with the data architect assistant.

Commands:
  .suggest   Show suggested questions
  .clear     Start a new conversation
  .quit      Exit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd)
		},
	}
}

// lineReader is the part of readline the chat loop uses.
type lineReader interface {
	Readline() (string, error)
}

func runChat(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".datapulse_chat_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newChatCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	defer func() { _ = rl.Close() }()

	return chatLoop(cmd.Context(), rl, cc.Catalog, cc.Renderer, chatlog.New())
}

func newChatCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".suggest"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, s := range chatlog.Suggestions {
		items = append(items, readline.PcItem(s))
	}
	return readline.NewPrefixCompleter(items...)
}

// chatLoop reads questions until EOF or .quit and prints each exchange.
func chatLoop(ctx context.Context, in lineReader, asker chatlog.Asker, r *output.Renderer, log *chatlog.Log) error {
	r.Header(1, "Data Architect Assistant")
	printEntry(r, log.Entries()[0])
	printSuggestions(r, log)

	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ".quit", ".exit":
			return nil
		case ".clear":
			log.Reset()
			printEntry(r, log.Entries()[0])
			printSuggestions(r, log)
			continue
		case ".suggest":
			for _, s := range chatlog.Suggestions {
				r.Println("  - " + s)
			}
			continue
		}

		spin := r.NewSpinner("Assistant is typing...")
		spin.Start()
		err = log.Send(ctx, asker, line)
		spin.Stop()

		switch {
		case errors.Is(err, chatlog.ErrBlank), errors.Is(err, chatlog.ErrBusy):
			continue
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.Warning("Failed to send: " + err.Error())
		}

		entries := log.Entries()
		printEntry(r, entries[len(entries)-1])
	}
}

func printEntry(r *output.Renderer, e chatlog.Entry) {
	stamp := e.Time().Local().Format(time.Kitchen)
	if r.EffectiveMode() != output.ModeText {
		r.Printf("**%s** (%s): %s\n\n", e.Role, stamp, e.Content)
		return
	}
	styles := r.Styles()
	r.Println(styles.Info.Render(string(e.Role)) + " " + styles.Muted.Render(stamp))
	r.Println(e.Content)
	r.Println()
}

func printSuggestions(r *output.Renderer, log *chatlog.Log) {
	if !log.ShowSuggestions() {
		return
	}
	r.Muted("Try asking:")
	for _, s := range chatlog.Suggestions {
		r.Println("  - " + s)
	}
	r.Println()
}
