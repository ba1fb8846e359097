package chat_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

var _ = Describe("Book", func() {
	Describe("UnmarshalJSON", func() {
		Context("with the direct url shape", func() {
			It("decodes into the direct purchase variant", func() {
				raw := `{"title":"X","author":["A"],"price":9.99,"summary":"S","url":"http://x"}`

				var b chat.Book
				Expect(json.Unmarshal([]byte(raw), &b)).To(Succeed())

				Expect(b.Title).To(Equal("X"))
				Expect(b.Authors).To(Equal([]string{"A"}))
				Expect(b.Price).To(Equal(9.99))
				Expect(b.Summary).To(Equal("S"))
				Expect(b.Purchase.Kind).To(Equal(chat.PurchaseDirect))
				Expect(b.Purchase.URL).To(Equal("http://x"))
			})
		})

		Context("with the purchase_links shape", func() {
			It("decodes into the retailer pair variant", func() {
				raw := `{
					"title": "1984",
					"author": ["George Orwell"],
					"price": 14.99,
					"summary": "A dystopian novel.",
					"purchase_links": {
						"amazon": "https://www.amazon.it/1984",
						"lafeltrinelli": "https://www.lafeltrinelli.it/1984"
					}
				}`

				var b chat.Book
				Expect(json.Unmarshal([]byte(raw), &b)).To(Succeed())

				Expect(b.Purchase.Kind).To(Equal(chat.PurchaseRetailers))
				Expect(b.Purchase.Amazon).To(Equal("https://www.amazon.it/1984"))
				Expect(b.Purchase.LaFeltrinelli).To(Equal("https://www.lafeltrinelli.it/1984"))
				Expect(b.Purchase.URL).To(BeEmpty())
			})

			It("prefers purchase_links when both shapes are present", func() {
				raw := `{"title":"X","author":["A"],"price":1,"summary":"S",
					"url":"http://direct",
					"purchase_links":{"amazon":"http://a","lafeltrinelli":"http://l"}}`

				var b chat.Book
				Expect(json.Unmarshal([]byte(raw), &b)).To(Succeed())

				Expect(b.Purchase.Kind).To(Equal(chat.PurchaseRetailers))
			})
		})

		It("coerces a bare string author into a single-element list", func() {
			raw := `{"title":"X","author":"Solo Author","price":5,"summary":"S","url":"http://x"}`

			var b chat.Book
			Expect(json.Unmarshal([]byte(raw), &b)).To(Succeed())

			Expect(b.Authors).To(Equal([]string{"Solo Author"}))
		})

		It("coerces a numeric string price", func() {
			raw := `{"title":"X","author":["A"],"price":"12.50","summary":"S","url":"http://x"}`

			var b chat.Book
			Expect(json.Unmarshal([]byte(raw), &b)).To(Succeed())

			Expect(b.Price).To(Equal(12.50))
		})

		It("rejects a price that is not numeric", func() {
			raw := `{"title":"X","author":["A"],"price":"free","summary":"S","url":"http://x"}`

			var b chat.Book
			Expect(json.Unmarshal([]byte(raw), &b)).NotTo(Succeed())
		})

		It("rejects a negative price", func() {
			for _, raw := range []string{
				`{"title":"X","author":["A"],"price":-9.99,"summary":"S","url":"http://x"}`,
				`{"title":"X","author":["A"],"price":"-9.99","summary":"S","url":"http://x"}`,
			} {
				var b chat.Book
				Expect(json.Unmarshal([]byte(raw), &b)).NotTo(Succeed())
			}
		})
	})

	Describe("MarshalJSON", func() {
		It("re-emits the direct shape for the direct variant", func() {
			b := chat.Book{
				Title:    "X",
				Authors:  []string{"A"},
				Price:    9.99,
				Summary:  "S",
				Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://x"},
			}

			data, err := json.Marshal(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"url":"http://x"`))
			Expect(string(data)).NotTo(ContainSubstring("purchase_links"))
		})

		It("re-emits the retailer shape for the retailer variant", func() {
			b := chat.Book{
				Title:   "X",
				Authors: []string{"A"},
				Price:   9.99,
				Summary: "S",
				Purchase: chat.Purchase{
					Kind:          chat.PurchaseRetailers,
					Amazon:        "http://a",
					LaFeltrinelli: "http://l",
				},
			}

			data, err := json.Marshal(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"purchase_links"`))
			Expect(string(data)).To(ContainSubstring(`"amazon":"http://a"`))
			Expect(string(data)).NotTo(ContainSubstring(`"url"`))
		})

		It("round-trips each shape", func() {
			for _, b := range []chat.Book{
				{
					Title: "Direct", Authors: []string{"A"}, Price: 1.50, Summary: "S",
					Purchase: chat.Purchase{Kind: chat.PurchaseDirect, URL: "http://x"},
				},
				{
					Title: "Retail", Authors: []string{"A", "B"}, Price: 20, Summary: "S",
					Purchase: chat.Purchase{
						Kind: chat.PurchaseRetailers, Amazon: "http://a", LaFeltrinelli: "http://l",
					},
				},
			} {
				data, err := json.Marshal(b)
				Expect(err).NotTo(HaveOccurred())

				var back chat.Book
				Expect(json.Unmarshal(data, &back)).To(Succeed())
				Expect(back).To(Equal(b))
			}
		})
	})
})
