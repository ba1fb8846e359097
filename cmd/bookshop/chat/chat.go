package chatcmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/conversation"
	"github.com/interlinker0325/chatbot-bookshop/pkg/logger"
	"github.com/interlinker0325/chatbot-bookshop/pkg/transport"
	"github.com/interlinker0325/chatbot-bookshop/tui"
)

const chatLongDesc string = `Open an interactive chat with the bookshop assistant.

The conversation starts with a greeting from the assistant; type a
question and press enter. While a reply is in flight further submissions
are ignored. Quit with esc or ctrl+c.

Examples:
  bookshop chat
  bookshop chat --server http://books.local:5000 --session mine`

const chatShortDesc string = "Chat with the bookshop assistant"

type chatCommander struct {
	serverURL string
	sessionID string
	timeout   time.Duration
	logPath   string
	debug     bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.serverURL, "server", "s", "http://localhost:5000", "Chatbot server URL")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Session id to resume (default: a fresh one)")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", transport.DefaultTimeout, "Per-request timeout")
	cmd.Flags().StringVar(&cmder.logPath, "log", "", "Write logs to this file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run() error {
	// Logs go to a file because stdout belongs to the chat screen.
	log, err := c.buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := []transport.Option{
		transport.WithTimeout(c.timeout),
		transport.WithLogger(log),
	}
	if c.sessionID != "" {
		opts = append(opts, transport.WithSessionID(c.sessionID))
	}
	client := transport.New(c.serverURL+"/chatbot", opts...)

	store := conversation.NewStore("")
	return tui.Run(store, client, log)
}

func (c *chatCommander) buildLogger() (*zap.Logger, error) {
	if c.logPath == "" {
		return zap.NewNop(), nil
	}

	log, err := logger.NewFileLogger(c.logPath, c.debug)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	return log, nil
}
