package domain

// Money is a currency amount as returned by the commerce platform.
// Amounts are never computed locally; they are copied from cart responses.
type Money struct {
	CentAmount   int64  `json:"centAmount"`
	CurrencyCode string `json:"currencyCode"`
}

// Snapshot holds denormalized display data captured when a line is added,
// so the storefront can render the cart without refetching the product.
type Snapshot struct {
	Title           string            `json:"title"`
	VariantTitle    string            `json:"variantTitle,omitempty"`
	ImageURL        string            `json:"imageUrl,omitempty"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

// CartLine is one merchandise entry in a cart. VariantID is unique within
// a cart; adding the same variant again increments quantity server-side.
// LineID is the remote cart API's own identifier for the line, which its
// update and remove mutations are keyed by. It never reaches the browser.
type CartLine struct {
	LineID    string   `json:"-"`
	VariantID string   `json:"variantId"`
	Quantity  int      `json:"quantity"`
	UnitPrice Money    `json:"unitPrice"`
	Snapshot  Snapshot `json:"snapshot"`
}

// Cart mirrors the last authoritative response from the remote cart API.
// TotalQuantity and TotalAmount come from the platform, which owns tax and
// discount logic.
type Cart struct {
	ID            string     `json:"id"`
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalAmount   Money      `json:"totalAmount"`
	CheckoutURL   string     `json:"checkoutUrl,omitempty"`
}

// Line returns the line for a variant, or nil if the cart has none.
func (c *Cart) Line(variantID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].VariantID == variantID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Clone deep-copies the cart so callers can hold a snapshot that later
// replacements cannot mutate.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
		for i := range out.Lines {
			if opts := c.Lines[i].Snapshot.SelectedOptions; opts != nil {
				cp := make(map[string]string, len(opts))
				for k, v := range opts {
					cp[k] = v
				}
				out.Lines[i].Snapshot.SelectedOptions = cp
			}
		}
	}
	return &out
}
