package session_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
	"github.com/interlinker0325/chatbot-bookshop/pkg/session"
)

// Both drivers must satisfy the same contract, so the specs run once per
// driver.
var _ = Describe("Store", func() {
	drivers := map[string]func() session.Store{
		"MemoryStore": func() session.Store {
			return session.NewMemoryStore()
		},
		"SQLiteStore": func() session.Store {
			store, err := session.NewSQLiteStore(":memory:")
			Expect(err).NotTo(HaveOccurred())
			return store
		},
	}

	for name, newStore := range drivers {
		name, newStore := name, newStore

		Context(name, func() {
			var (
				store session.Store
				ctx   context.Context
			)

			BeforeEach(func() {
				ctx = context.Background()
				store = newStore()
			})

			AfterEach(func() {
				Expect(store.Close()).To(Succeed())
			})

			It("returns ErrNotFound for an unknown session", func() {
				_, err := store.Get(ctx, "nope")
				Expect(err).To(BeAssignableToTypeOf(session.ErrNotFound{}))
			})

			It("creates a session on first append", func() {
				entry := session.Entry{Role: "user", Content: "hello", CreatedAt: time.Now()}
				Expect(store.Append(ctx, "s1", entry)).To(Succeed())

				sess, err := store.Get(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(sess.ID).To(Equal("s1"))
				Expect(sess.Messages).To(HaveLen(1))
				Expect(sess.Messages[0].Role).To(Equal("user"))
				Expect(sess.Messages[0].Content).To(Equal("hello"))
			})

			It("keeps the transcript in append order", func() {
				for _, content := range []string{"one", "two", "three"} {
					Expect(store.Append(ctx, "s1", session.Entry{
						Role: "user", Content: content, CreatedAt: time.Now(),
					})).To(Succeed())
				}

				sess, err := store.Get(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(sess.Messages).To(HaveLen(3))
				Expect(sess.Messages[0].Content).To(Equal("one"))
				Expect(sess.Messages[2].Content).To(Equal("three"))
			})

			It("isolates sessions from each other", func() {
				Expect(store.Append(ctx, "a", session.Entry{Role: "user", Content: "for a", CreatedAt: time.Now()})).To(Succeed())
				Expect(store.Append(ctx, "b", session.Entry{Role: "user", Content: "for b", CreatedAt: time.Now()})).To(Succeed())

				sess, err := store.Get(ctx, "a")
				Expect(err).NotTo(HaveOccurred())
				Expect(sess.Messages).To(HaveLen(1))
				Expect(sess.Messages[0].Content).To(Equal("for a"))
			})

			It("records and returns the last recommendation set", func() {
				books := []chat.Book{{
					Title: "1984", Authors: []string{"George Orwell"}, Price: 14.99, Summary: "S",
					Purchase: chat.Purchase{
						Kind: chat.PurchaseRetailers, Amazon: "http://a", LaFeltrinelli: "http://l",
					},
				}}
				Expect(store.SetRecommendations(ctx, "s1", "recommend a thriller", books)).To(Succeed())

				sess, err := store.Get(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(sess.LastQuery).To(Equal("recommend a thriller"))
				Expect(sess.LastBooks).To(Equal(books))
			})

			It("overwrites the recommendation set on each turn", func() {
				first := []chat.Book{{Title: "First", Authors: []string{"A"},
					Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://1"}}}
				second := []chat.Book{{Title: "Second", Authors: []string{"B"},
					Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://2"}}}

				Expect(store.SetRecommendations(ctx, "s1", "q1", first)).To(Succeed())
				Expect(store.SetRecommendations(ctx, "s1", "q2", second)).To(Succeed())

				sess, err := store.Get(ctx, "s1")
				Expect(err).NotTo(HaveOccurred())
				Expect(sess.LastQuery).To(Equal("q2"))
				Expect(sess.LastBooks).To(HaveLen(1))
				Expect(sess.LastBooks[0].Title).To(Equal("Second"))
			})

			It("lists known session ids sorted", func() {
				Expect(store.Append(ctx, "b", session.Entry{Role: "user", Content: "x", CreatedAt: time.Now()})).To(Succeed())
				Expect(store.Append(ctx, "a", session.Entry{Role: "user", Content: "y", CreatedAt: time.Now()})).To(Succeed())

				ids, err := store.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).To(Equal([]string{"a", "b"}))
			})
		})
	}

	Context("SQLiteStore on disk", func() {
		It("creates the database file and survives reopening", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "sessions.db")

			store, err := session.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())

			ctx := context.Background()
			Expect(store.Append(ctx, "s1", session.Entry{
				Role: "user", Content: "hello", CreatedAt: time.Now(),
			})).To(Succeed())
			Expect(store.Close()).To(Succeed())

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())

			reopened, err := session.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			sess, err := reopened.Get(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Messages).To(HaveLen(1))
		})
	})
})
