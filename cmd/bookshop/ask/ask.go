package askcmder

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/transport"
)

const askLongDesc string = `Ask the bookshop assistant a single question and print the answer.

Recommendations are rendered as markdown with their purchase links.
Pass --session to keep follow-up context between invocations.

Examples:
  bookshop ask "recommend a thriller"
  bookshop ask --session mine "anything in Italian?"
  bookshop ask --plain "what is Gorky Park about?" | less`

const askShortDesc string = "Ask a single question"

type askCommander struct {
	serverURL string
	sessionID string
	timeout   time.Duration
	plain     bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:5000", "Chatbot server URL")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Session id for follow-up context")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", transport.DefaultTimeout, "Request timeout")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print raw markdown without styling")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	opts := []transport.Option{transport.WithTimeout(c.timeout)}
	if c.sessionID != "" {
		opts = append(opts, transport.WithSessionID(c.sessionID))
	}
	client := transport.New(c.serverURL+"/chatbot", opts...)

	reply, err := client.Send(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("could not reach the assistant: %w", err)
	}

	md := replyMarkdown(reply)

	if c.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	}

	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("could not create renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("could not render answer: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// replyMarkdown turns a reply into markdown: text answers pass through,
// recommendations become a section per book with its purchase links.
func replyMarkdown(reply chat.Reply) string {
	if reply.Kind != chat.ReplyBooks {
		return reply.Text
	}

	var b strings.Builder
	for _, book := range reply.Books {
		fmt.Fprintf(&b, "## %s\n\n", book.Title)
		fmt.Fprintf(&b, "*%s*, €%.2f\n\n", strings.Join(book.Authors, ", "), book.Price)
		fmt.Fprintf(&b, "%s\n\n", book.Summary)

		switch book.Purchase.Kind {
		case chat.PurchaseRetailers:
			fmt.Fprintf(&b, "- [Amazon](%s)\n", book.Purchase.Amazon)
			fmt.Fprintf(&b, "- [LaFeltrinelli](%s)\n", book.Purchase.LaFeltrinelli)
		default:
			fmt.Fprintf(&b, "- [Buy](%s)\n", book.Purchase.URL)
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
