// Package tui is the terminal chat widget: a message history viewport, an
// input line, and a spinner while a reply is in flight. All conversation
// state lives in the conversation.Store; this package only renders it and
// feeds it events.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/conversation"
)

// settledMsg delivers the transport outcome of the in-flight turn back
// into the update loop.
type settledMsg struct {
	reply chat.Reply
	err   error
}

// Model is the bubbletea model for the chat widget.
type Model struct {
	store  *conversation.Store
	sender conversation.Sender
	logger *zap.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool
}

// New creates the widget around an existing store and transport.
func New(store *conversation.Store, sender conversation.Sender, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "Ask for your next book..."
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return Model{
		store:   store,
		sender:  sender,
		logger:  logger,
		input:   input,
		spinner: sp,
	}
}

// Run starts the widget full-screen and blocks until the user quits.
func Run(store *conversation.Store, sender conversation.Sender, logger *zap.Logger) error {
	p := tea.NewProgram(New(store, sender, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat ui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// One line each for the status row and the input row.
		vpHeight := msg.Height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.input.Width = msg.Width - 4
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			query, ok := m.store.Submit(m.input.Value())
			if !ok {
				return m, nil
			}
			m.input.Reset()
			m.syncViewport()
			m.logger.Debug("submitted query", zap.String("query", query))
			return m, tea.Batch(m.spinner.Tick, m.send(query))
		}

	case settledMsg:
		m.store.Settle(msg.reply, msg.err)
		m.syncViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.store.Awaiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	// The store gates double submission; the input stays editable so the
	// user can draft the next question while waiting.
	m.input, cmd = m.input.Update(msg)
	m.store.SetDraft(m.input.Value())
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send performs the single transport call of the submitted turn.
func (m Model) send(query string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.sender.Send(context.Background(), query)
		return settledMsg{reply: reply, err: err}
	}
}

// syncViewport re-renders the history and scrolls to the newest entry.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderHistory(m.store.Messages(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	status := " "
	if m.store.Awaiting() {
		status = statusStyle.Render(m.spinner.View() + "thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), status, m.input.View())
}

// renderHistory lays out the full conversation for the viewport.
func renderHistory(messages []chat.Message, width int) string {
	if width <= 0 {
		width = 80
	}

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage lays out one message: a label line and the payload, which
// is either the text body or the book list.
func renderMessage(msg chat.Message, width int) string {
	bodyWidth := width - 2
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	var b strings.Builder
	if msg.IsBot {
		b.WriteString(botLabelStyle.Render("bookseller"))
	} else {
		b.WriteString(userLabelStyle.Render("you"))
	}
	b.WriteString("\n")

	if len(msg.Books) > 0 {
		books := make([]string, 0, len(msg.Books))
		for i, book := range msg.Books {
			books = append(books, renderBook(i+1, book, bodyWidth))
		}
		b.WriteString(strings.Join(books, "\n\n"))
		return b.String()
	}

	b.WriteString(bodyStyle.Width(bodyWidth).Render(msg.Text))
	return b.String()
}

// renderBook lays out one recommendation: title, authors, price, summary,
// and the purchase links, whichever variant the server sent.
func renderBook(n int, book chat.Book, width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", n, book.Title)))
	b.WriteString("\n")
	b.WriteString(authorStyle.Render(strings.Join(book.Authors, ", ")))
	b.WriteString("  ")
	b.WriteString(priceStyle.Render(fmt.Sprintf("€%.2f", book.Price)))
	b.WriteString("\n")
	b.WriteString(bodyStyle.Width(width).Render(book.Summary))
	b.WriteString("\n")

	switch book.Purchase.Kind {
	case chat.PurchaseRetailers:
		b.WriteString(linkStyle.Render("Amazon: " + book.Purchase.Amazon))
		b.WriteString("\n")
		b.WriteString(linkStyle.Render("LaFeltrinelli: " + book.Purchase.LaFeltrinelli))
	default:
		b.WriteString(linkStyle.Render("Buy: " + book.Purchase.URL))
	}

	return b.String()
}
