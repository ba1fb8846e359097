package chat

// ReplyKind discriminates the two outcomes of a successful chatbot turn.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyBooks
)

// Reply is the tagged union a transport call settles with: a plain text
// answer or a list of book recommendations.
type Reply struct {
	Kind  ReplyKind
	Text  string
	Books []Book
}

// TextReply wraps a plain text answer.
func TextReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// BooksReply wraps a recommendation list.
func BooksReply(books []Book) Reply {
	return Reply{Kind: ReplyBooks, Books: books}
}

// Request is the JSON body POSTed to the /chatbot endpoint.
type Request struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Response is the JSON body the /chatbot endpoint answers with. Books is
// emitted as null for plain text replies, matching the endpoint's existing
// consumers.
type Response struct {
	Response  string `json:"response"`
	Books     []Book `json:"books"`
	SessionID string `json:"session_id,omitempty"`
}

// Reply interprets the response body: a non-empty books array yields the
// books variant (the text field is ignored even when present), anything
// else yields the text variant.
func (r Response) Reply() Reply {
	if len(r.Books) > 0 {
		return BooksReply(r.Books)
	}
	return TextReply(r.Response)
}
