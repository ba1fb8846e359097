package chat

// Message is a unit of conversation history as the view displays it.
// Every message carries a display payload: user messages and bot text
// replies have Text, bot recommendation replies have a non-empty Books.
type Message struct {
	Text  string `json:"text,omitempty"`
	IsBot bool   `json:"isBot"`
	Books []Book `json:"books,omitempty"`
}

// UserMessage builds a message on the user's side of the conversation.
func UserMessage(text string) Message {
	return Message{Text: text}
}

// BotText builds a plain text reply from the bot.
func BotText(text string) Message {
	return Message{Text: text, IsBot: true}
}

// BotBooks builds a recommendation reply from the bot. Text is omitted;
// the book list is the payload.
func BotBooks(books []Book) Message {
	return Message{Books: books, IsBot: true}
}
