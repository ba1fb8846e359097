package conversation_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/conversation"
)

// stubSender records calls and settles with a canned outcome.
type stubSender struct {
	calls []string
	reply chat.Reply
	err   error
}

func (s *stubSender) Send(_ context.Context, query string) (chat.Reply, error) {
	s.calls = append(s.calls, query)
	return s.reply, s.err
}

var _ = Describe("Store", func() {
	var store *conversation.Store

	BeforeEach(func() {
		store = conversation.NewStore("")
	})

	Describe("initial state", func() {
		It("has exactly one message, the seed greeting, from the bot", func() {
			msgs := store.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].IsBot).To(BeTrue())
			Expect(msgs[0].Text).To(Equal(conversation.DefaultGreeting))
		})

		It("is not awaiting a reply", func() {
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("uses a custom greeting when given one", func() {
			s := conversation.NewStore("Welcome to the shop")
			Expect(s.Messages()[0].Text).To(Equal("Welcome to the shop"))
		})
	})

	Describe("Submit", func() {
		It("rejects empty input without mutating the history", func() {
			_, ok := store.Submit("")
			Expect(ok).To(BeFalse())
			Expect(store.Messages()).To(HaveLen(1))
		})

		It("rejects whitespace-only input", func() {
			_, ok := store.Submit("   \t\n")
			Expect(ok).To(BeFalse())
			Expect(store.Messages()).To(HaveLen(1))
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("appends the trimmed user message and raises the awaiting flag", func() {
			query, ok := store.Submit("  hello  ")
			Expect(ok).To(BeTrue())
			Expect(query).To(Equal("hello"))

			msgs := store.Messages()
			Expect(msgs).To(HaveLen(2))
			Expect(msgs[1].Text).To(Equal("hello"))
			Expect(msgs[1].IsBot).To(BeFalse())
			Expect(store.Awaiting()).To(BeTrue())
		})

		It("clears the draft on acceptance", func() {
			store.SetDraft("hello")
			_, ok := store.Submit(store.Draft())
			Expect(ok).To(BeTrue())
			Expect(store.Draft()).To(BeEmpty())
		})

		It("is a no-op while a turn is in flight", func() {
			_, ok := store.Submit("first")
			Expect(ok).To(BeTrue())

			_, ok = store.Submit("second")
			Expect(ok).To(BeFalse())
			Expect(store.Messages()).To(HaveLen(2))
		})
	})

	Describe("Settle", func() {
		BeforeEach(func() {
			_, ok := store.Submit("hello")
			Expect(ok).To(BeTrue())
		})

		It("appends one bot text message on a text reply", func() {
			store.Settle(chat.TextReply("Hi!"), nil)

			msgs := store.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[2].IsBot).To(BeTrue())
			Expect(msgs[2].Text).To(Equal("Hi!"))
			Expect(msgs[2].Books).To(BeEmpty())
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("appends one bot books message, text unset, on a books reply", func() {
			books := []chat.Book{{
				Title: "X", Authors: []string{"A"}, Price: 9.99, Summary: "S",
				Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://x"},
			}}
			store.Settle(chat.BooksReply(books), nil)

			msgs := store.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[2].IsBot).To(BeTrue())
			Expect(msgs[2].Text).To(BeEmpty())
			Expect(msgs[2].Books).To(HaveLen(1))
			Expect(msgs[2].Books[0].Title).To(Equal("X"))
		})

		It("appends the fixed fallback message on any error", func() {
			store.Settle(chat.Reply{}, errors.New("connection refused"))

			msgs := store.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[2].IsBot).To(BeTrue())
			Expect(msgs[2].Text).To(Equal(conversation.FallbackText))
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("never leaves the awaiting flag raised, even on failure", func() {
			store.Settle(chat.Reply{}, errors.New("boom"))
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("is a no-op with no turn in flight", func() {
			store.Settle(chat.TextReply("first"), nil)
			store.Settle(chat.TextReply("second"), nil)
			Expect(store.Messages()).To(HaveLen(3))
		})

		It("allows the next submission after settling", func() {
			store.Settle(chat.TextReply("Hi!"), nil)
			_, ok := store.Submit("again")
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Turn", func() {
		It("performs exactly one transport call per accepted submission", func() {
			sender := &stubSender{reply: chat.TextReply("Hi!")}
			Expect(store.Turn(context.Background(), sender, "hello")).To(BeTrue())

			Expect(sender.calls).To(Equal([]string{"hello"}))
			msgs := store.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[2].Text).To(Equal("Hi!"))
		})

		It("never invokes the transport for rejected input", func() {
			sender := &stubSender{reply: chat.TextReply("Hi!")}
			Expect(store.Turn(context.Background(), sender, "   ")).To(BeFalse())
			Expect(sender.calls).To(BeEmpty())
		})

		It("settles with the fallback on transport failure", func() {
			sender := &stubSender{err: errors.New("network down")}
			Expect(store.Turn(context.Background(), sender, "test")).To(BeTrue())

			msgs := store.Messages()
			Expect(msgs[len(msgs)-1].Text).To(Equal(conversation.FallbackText))
			Expect(store.Awaiting()).To(BeFalse())
		})

		It("covers the recommendation scenario end to end", func() {
			sender := &stubSender{reply: chat.BooksReply([]chat.Book{{
				Title: "X", Authors: []string{"A"}, Price: 9.99, Summary: "S",
				Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://x"},
			}})}
			Expect(store.Turn(context.Background(), sender, "recommend a thriller")).To(BeTrue())

			msgs := store.Messages()
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[0].IsBot).To(BeTrue())
			Expect(msgs[1].Text).To(Equal("recommend a thriller"))
			Expect(msgs[2].Books[0].Title).To(Equal("X"))
		})
	})

	Describe("change notifications", func() {
		It("fires after submissions and settles", func() {
			var fired int
			store.OnChange(func() { fired++ })

			store.Submit("hello")
			Expect(fired).To(Equal(1))

			store.Settle(chat.TextReply("Hi!"), nil)
			Expect(fired).To(Equal(2))
		})

		It("does not fire for rejected submissions", func() {
			var fired int
			store.OnChange(func() { fired++ })

			store.Submit("  ")
			Expect(fired).To(BeZero())
		})
	})
})
