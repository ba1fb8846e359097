package server

import "github.com/interlinker0325/chatbot-bookshop/pkg/chat"

// Fixed reply texts of the /chatbot endpoint. Clients key off the books
// array, not these strings, but they are part of the endpoint's observable
// behavior and stay stable.
const (
	refusalText   = "I'm just a bookseller, I can help you find the next book to read but nothing else"
	recommendText = "Here are some books you might like:"
	criteriaText  = "Here are some books matching your criteria:"
)

const relatednessPrompt = "Please analyze the user's message and determine if it is related to books " +
	"or bookshops. Return 'true' if it is related, and 'false' if it is not."

const followUpMatchPrompt = `Analyze if the user's question is about one of the previously recommended books.
If yes, return the book's details in JSON format. If no, return 'null'.

Example response for a match:
{
	"title": "Book Title",
	"author": ["Author Name"],
	"price": 19.99,
	"summary": "Book summary",
	"purchase_links": {
		"amazon": "https://amazon.com/book",
		"lafeltrinelli": "https://lafeltrinelli.it/book"
	}
}

Example response for no match:
null`

const criteriaFollowUpPrompt = `Analyze if the user's message is a follow-up request with specific criteria (like language, publisher, etc.).
Return 'true' if it is a follow-up with criteria, 'false' if it is not.

Examples of follow-up criteria:
- "anything in Italian?"
- "from Mondadori publishing house?"
- "books in Spanish?"
- "anything from Penguin?"

Examples of non-follow-up:
- "tell me more about this book"
- "what's the price?"
- "who is the author?"`

// bookDetailsPrompt takes title, comma-joined authors, summary, and the
// user's question.
const bookDetailsPrompt = `You are a knowledgeable bookseller. Provide detailed information about this book:
Title: %s
Author: %s
Summary: %s

The user asked: %s

Provide a detailed, informative response that directly addresses the user's question about this specific book.
Include relevant details about the book's themes, writing style, reception, and why it might interest the reader.
Keep the response concise but informative.`

// recommendPrompt takes an optional criteria line (empty or
// "Additional criteria: ...").
const recommendPrompt = `You are a book recommendation assistant. Based on the user's query and conversation history, recommend 3 books.
%s
Your response MUST be a valid JSON object with this exact structure:
{
	"books": [
		{
			"title": "Book Title",
			"author": ["Author Name"],
			"price": 19.99,
			"summary": "A brief summary of the book",
			"purchase_links": {
				"amazon": "https://www.amazon.it/dp/actual-isbn-or-search-url",
				"lafeltrinelli": "https://www.lafeltrinelli.it/actual-book-url"
			}
		}
	]
}

Rules:
1. Always return exactly 3 books
2. Use realistic book titles and authors
3. Prices should be in euros
4. Summaries should be 1-2 sentences
5. For purchase links, use ISBN-based links when possible and search URLs otherwise
6. The response must be valid JSON
7. Consider the conversation history when making recommendations
8. If specific criteria are provided (like language or publisher), ensure all recommended books meet those criteria`

// linksPrompt takes a book title and its first author.
const linksPrompt = `How can I find the book '%s' by %s? ` +
	`Please give me only the direct Amazon.it and lafeltrinelli.it links in JSON format as: ` +
	`{"amazon": "...", "lafeltrinelli": "..."}`

// defaultBooks are served when recommendation generation fails outright, so
// the endpoint still answers with something sensible.
func defaultBooks() []chat.Book {
	return []chat.Book{
		{
			Title:   "The Great Gatsby",
			Authors: []string{"F. Scott Fitzgerald"},
			Price:   12.99,
			Summary: "A story of the fabulously wealthy Jay Gatsby and his love for the beautiful Daisy Buchanan.",
			Purchase: chat.Purchase{
				Kind:          chat.PurchaseRetailers,
				Amazon:        "https://www.amazon.it/Great-Gatsby-F-Scott-Fitzgerald/dp/0141182636",
				LaFeltrinelli: "https://www.lafeltrinelli.it/libri/f-scott-fitzgerald/great-gatsby-9780141182636",
			},
		},
		{
			Title:   "1984",
			Authors: []string{"George Orwell"},
			Price:   14.99,
			Summary: "A dystopian novel set in a totalitarian society where critical thought is suppressed.",
			Purchase: chat.Purchase{
				Kind:          chat.PurchaseRetailers,
				Amazon:        "https://www.amazon.it/1984-George-Orwell/dp/0451524934",
				LaFeltrinelli: "https://www.lafeltrinelli.it/libri/george-orwell/1984-9780451524935",
			},
		},
		{
			Title:   "To Kill a Mockingbird",
			Authors: []string{"Harper Lee"},
			Price:   13.99,
			Summary: "The story of racial injustice and the loss of innocence in the American South.",
			Purchase: chat.Purchase{
				Kind:          chat.PurchaseRetailers,
				Amazon:        "https://www.amazon.it/Kill-Mockingbird-Harper-Lee/dp/0446310786",
				LaFeltrinelli: "https://www.lafeltrinelli.it/libri/harper-lee/kill-mockingbird-9780446310789",
			},
		},
	}
}
