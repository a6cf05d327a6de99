package order

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Value is a loosely typed scalar from the Mini App payload. Strings,
// numbers and booleans are kept as text; null becomes empty.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a scalar value, got %s", data)
	default:
		*v = Value(data)
	}

	return nil
}

// Or returns v, or def when v is blank.
func (v Value) Or(def string) string {
	if s := strings.TrimSpace(string(v)); s != "" {
		return s
	}
	return def
}

// Set reports whether v holds a truthy flag. Blank, false and zero values
// are unset; any other text is set.
func (v Value) Set() bool {
	s := strings.ToLower(strings.TrimSpace(string(v)))
	if s == "" || s == "false" {
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0
	}
	return true
}

type Customer struct {
	Name           Value `json:"name"`
	Phone          Value `json:"phone"`
	Email          Value `json:"email"`
	TelegramUserID Value `json:"telegramUserId"`
	ContactMethod  Value `json:"contactMethod"`
	Comment        Value `json:"comment"`
}

type Item struct {
	Title          Value `json:"title"`
	SKU            Value `json:"sku"`
	Qty            Value `json:"qty"`
	Price          Value `json:"price"`
	IsRequestPrice Value `json:"isRequestPrice"`
}

// Payload is an order or feedback request posted by the Mini App.
type Payload struct {
	ID                Value    `json:"id"`
	CreatedAt         Value    `json:"createdAt"`
	RequestType       Value    `json:"requestType"`
	Type              Value    `json:"type"`
	TelegramUserID    Value    `json:"telegramUserId"`
	Customer          Customer `json:"customer"`
	Items             []Item   `json:"items"`
	PricedItems       []Item   `json:"pricedItems"`
	RequestPriceItems []Item   `json:"requestPriceItems"`
	Total             Value    `json:"total"`
	TotalDisplay      Value    `json:"totalDisplay"`
	Message           Value    `json:"message"`
}

// DecodePayload parses a request body. An empty body is an empty payload.
func DecodePayload(body []byte) (*Payload, error) {
	var p Payload
	if len(bytes.TrimSpace(body)) == 0 {
		return &p, nil
	}

	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return &p, nil
}

// IsFeedback reports whether the request is feedback rather than an order.
func (p *Payload) IsFeedback() bool {
	kind := p.RequestType.Or(p.Type.Or(""))
	return strings.ToLower(kind) == "feedback"
}

// Priced returns the items with a price. When pricedItems is not sent they
// are taken from items.
func (p *Payload) Priced() []Item {
	if len(p.PricedItems) > 0 {
		return p.PricedItems
	}
	return filterItems(p.Items, false)
}

// RequestPrice returns the items the customer asked a price for.
func (p *Payload) RequestPrice() []Item {
	if len(p.RequestPriceItems) > 0 {
		return p.RequestPriceItems
	}
	return filterItems(p.Items, true)
}

// TelegramID prefers the id given with the customer details.
func (p *Payload) TelegramID() string {
	return p.Customer.TelegramUserID.Or(p.TelegramUserID.Or("-"))
}

func filterItems(items []Item, requestPrice bool) []Item {
	var out []Item
	for _, i := range items {
		if i.IsRequestPrice.Set() == requestPrice {
			out = append(out, i)
		}
	}
	return out
}
