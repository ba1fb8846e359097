// Package chat defines the conversation data model shared by the client and
// the server: messages, book recommendations, and the wire envelope of the
// /chatbot endpoint.
package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PurchaseKind discriminates the two shapes a book's purchase reference can
// take on the wire.
type PurchaseKind int

const (
	// PurchaseDirect is a single purchase URL ("url" field).
	PurchaseDirect PurchaseKind = iota

	// PurchaseRetailers is a named pair of retailer links
	// ("purchase_links" object with "amazon" and "lafeltrinelli" keys).
	PurchaseRetailers
)

// Purchase is how a recommended book can be bought. Both endpoint versions
// are in the wild, so both shapes are supported as variants of the same
// capability rather than parallel optional fields.
type Purchase struct {
	Kind PurchaseKind

	// URL is set when Kind is PurchaseDirect.
	URL string

	// Amazon and LaFeltrinelli are set when Kind is PurchaseRetailers.
	Amazon        string
	LaFeltrinelli string
}

// Book is a single recommended item.
type Book struct {
	Title    string
	Authors  []string // joined with ", " for display
	Price    float64  // euros, non-negative, rendered with two fraction digits
	Summary  string
	Purchase Purchase
}

// bookWire is the JSON shape of a book. The author field may be a single
// string or an array, and price may arrive as a bare number or a numeric
// string, so both get dedicated decoders.
type bookWire struct {
	Title   string     `json:"title"`
	Author  authorList `json:"author"`
	Price   priceValue `json:"price"`
	Summary string     `json:"summary"`
	URL     string     `json:"url,omitempty"`
	Links   *bookLinks `json:"purchase_links,omitempty"`
}

type bookLinks struct {
	Amazon        string `json:"amazon"`
	LaFeltrinelli string `json:"lafeltrinelli"`
}

// authorList accepts either "author": "Name" or "author": ["Name", ...].
type authorList []string

func (a *authorList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*a = many
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("author must be a string or an array of strings")
	}
	*a = []string{one}
	return nil
}

// priceValue accepts either "price": 9.99 or "price": "9.99".
type priceValue float64

func (p *priceValue) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("price must be a number")
		}
		num = json.Number(s)
	}

	f, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return fmt.Errorf("price %q is not numeric", num)
	}
	if f < 0 {
		return fmt.Errorf("price %v must not be negative", f)
	}
	*p = priceValue(f)
	return nil
}

// UnmarshalJSON decodes a book from either wire shape. A purchase_links
// object wins over a url field when both are present.
func (b *Book) UnmarshalJSON(data []byte) error {
	var w bookWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	b.Title = w.Title
	b.Authors = []string(w.Author)
	b.Price = float64(w.Price)
	b.Summary = w.Summary

	if w.Links != nil {
		b.Purchase = Purchase{
			Kind:          PurchaseRetailers,
			Amazon:        w.Links.Amazon,
			LaFeltrinelli: w.Links.LaFeltrinelli,
		}
		return nil
	}

	b.Purchase = Purchase{Kind: PurchaseDirect, URL: w.URL}
	return nil
}

// MarshalJSON re-emits the same wire shape the purchase variant came from.
func (b Book) MarshalJSON() ([]byte, error) {
	w := bookWire{
		Title:   b.Title,
		Author:  authorList(b.Authors),
		Price:   priceValue(b.Price),
		Summary: b.Summary,
	}

	switch b.Purchase.Kind {
	case PurchaseRetailers:
		w.Links = &bookLinks{
			Amazon:        b.Purchase.Amazon,
			LaFeltrinelli: b.Purchase.LaFeltrinelli,
		}
	default:
		w.URL = b.Purchase.URL
	}

	return json.Marshal(w)
}
