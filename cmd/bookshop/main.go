package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/interlinker0325/chatbot-bookshop/cmd/bookshop/ask"
	chatcmder "github.com/interlinker0325/chatbot-bookshop/cmd/bookshop/chat"
)

const rootLongDesc string = `Terminal client for the bookshop chatbot.

Talks to a running chatbot server (see cmd/server) and presents its
recommendations either interactively or as a one-shot answer.`

func main() {
	root := &cobra.Command{
		Use:           "bookshop",
		Short:         "Bookshop chatbot client",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(chatcmder.NewChatCmd())
	root.AddCommand(askcmder.NewAskCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
