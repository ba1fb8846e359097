package chat_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/interlinker0325/chatbot-bookshop/pkg/chat"
)

var _ = Describe("Response", func() {
	Describe("Reply", func() {
		It("yields the text variant when books is null", func() {
			var resp chat.Response
			raw := `{"response": "Hi!", "books": null}`
			Expect(json.Unmarshal([]byte(raw), &resp)).To(Succeed())

			reply := resp.Reply()
			Expect(reply.Kind).To(Equal(chat.ReplyText))
			Expect(reply.Text).To(Equal("Hi!"))
			Expect(reply.Books).To(BeEmpty())
		})

		It("yields the text variant when books is an empty array", func() {
			var resp chat.Response
			raw := `{"response": "Hi!", "books": []}`
			Expect(json.Unmarshal([]byte(raw), &resp)).To(Succeed())

			Expect(resp.Reply().Kind).To(Equal(chat.ReplyText))
		})

		It("yields the books variant and ignores the text field when books are present", func() {
			var resp chat.Response
			raw := `{
				"response": "Here are some books you might like:",
				"books": [{"title":"X","author":["A"],"price":9.99,"summary":"S","url":"http://x"}]
			}`
			Expect(json.Unmarshal([]byte(raw), &resp)).To(Succeed())

			reply := resp.Reply()
			Expect(reply.Kind).To(Equal(chat.ReplyBooks))
			Expect(reply.Books).To(HaveLen(1))
			Expect(reply.Books[0].Title).To(Equal("X"))
			Expect(reply.Text).To(BeEmpty())
		})
	})

	It("marshals a null books field for text responses", func() {
		data, err := json.Marshal(chat.Response{Response: "Hi!"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"books":null`))
	})
})
