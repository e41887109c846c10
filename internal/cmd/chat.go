package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/buildright/internal/assistant"
	"github.com/matthieukhl/buildright/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the BuildBuddy assistant",
	Long: `Open an interactive session with BuildBuddy, the store's DIY assistant.
Replies are printed as they stream in. Type /quit or press Ctrl-D to leave.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	w, err := a.chats.Create(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return chatLoop(cmd.InOrStdin(), out, w, func(input string) error {
		return w.Send(ctx, input)
	})
}

// chatLoop reads one line per turn and prints the reply as it grows
func chatLoop(in io.Reader, out io.Writer, w *assistant.Widget, send func(string) error) error {
	transcript := w.Transcript()
	fmt.Fprintf(out, "🔨 %s\n", transcript[len(transcript)-1].Text)

	printer := &replyPrinter{out: out}
	unsubscribe := w.OnUpdate(printer.update)
	defer unsubscribe()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := scanner.Text()
		if strings.TrimSpace(input) == "/quit" {
			return nil
		}
		if !w.CanSend(input) {
			continue
		}

		printer.start()
		if err := send(input); err != nil && !errors.Is(err, assistant.ErrEmptyInput) {
			return err
		}
		fmt.Fprintln(out)
	}
}

// replyPrinter writes only the part of the model reply not yet printed
type replyPrinter struct {
	out     io.Writer
	active  bool
	printed string
}

func (p *replyPrinter) start() {
	p.active = false
	p.printed = ""
}

func (p *replyPrinter) update(transcript []models.ChatMessage) {
	last := transcript[len(transcript)-1]
	if last.Role != models.RoleModel {
		return
	}
	if !p.active {
		fmt.Fprint(p.out, "BuildBuddy: ")
		p.active = true
	}
	if strings.HasPrefix(last.Text, p.printed) {
		fmt.Fprint(p.out, last.Text[len(p.printed):])
	} else {
		fmt.Fprintf(p.out, "\n%s", last.Text)
	}
	p.printed = last.Text
}
