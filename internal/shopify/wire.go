package shopify

import (
	"encoding/json"
	"strconv"
	"strings"

	"storefront-bff/internal/domain"
)

// Wire shapes for the Storefront cart API. Field layout follows the
// GraphQL schema; only the parts this service reads are declared.

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphqlError             `json:"errors,omitempty"`
}

type cartPayload struct {
	Cart       *wireCart       `json:"cart"`
	UserErrors []wireUserError `json:"userErrors,omitempty"`
}

type wireUserError struct {
	Code    string   `json:"code"`
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type wireCart struct {
	ID            string    `json:"id"`
	CheckoutURL   string    `json:"checkoutUrl"`
	TotalQuantity int       `json:"totalQuantity"`
	Cost          wireCost  `json:"cost"`
	Lines         wireLines `json:"lines"`
}

type wireCost struct {
	TotalAmount wireMoney `json:"totalAmount"`
}

type wireMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type wireLines struct {
	Edges []struct {
		Node wireLine `json:"node"`
	} `json:"edges"`
}

type wireLine struct {
	ID          string          `json:"id"`
	Quantity    int             `json:"quantity"`
	Cost        wireLineCost    `json:"cost"`
	Merchandise wireMerchandise `json:"merchandise"`
}

type wireLineCost struct {
	AmountPerQuantity wireMoney `json:"amountPerQuantity"`
}

type wireMerchandise struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Product struct {
		Title string `json:"title"`
	} `json:"product"`
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
	SelectedOptions []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
}

func toDomainCart(w *wireCart) *domain.Cart {
	if w == nil {
		return nil
	}
	lines := make([]domain.CartLine, 0, len(w.Lines.Edges))
	for _, edge := range w.Lines.Edges {
		node := edge.Node
		snap := domain.Snapshot{
			Title:        node.Merchandise.Product.Title,
			VariantTitle: node.Merchandise.Title,
		}
		if node.Merchandise.Image != nil {
			snap.ImageURL = node.Merchandise.Image.URL
		}
		if len(node.Merchandise.SelectedOptions) > 0 {
			snap.SelectedOptions = make(map[string]string, len(node.Merchandise.SelectedOptions))
			for _, opt := range node.Merchandise.SelectedOptions {
				snap.SelectedOptions[opt.Name] = opt.Value
			}
		}
		lines = append(lines, domain.CartLine{
			LineID:    node.ID,
			VariantID: node.Merchandise.ID,
			Quantity:  node.Quantity,
			UnitPrice: toDomainMoney(node.Cost.AmountPerQuantity),
			Snapshot:  snap,
		})
	}
	return &domain.Cart{
		ID:            w.ID,
		Lines:         lines,
		TotalQuantity: w.TotalQuantity,
		TotalAmount:   toDomainMoney(w.Cost.TotalAmount),
		CheckoutURL:   w.CheckoutURL,
	}
}

func toDomainMoney(m wireMoney) domain.Money {
	return domain.Money{
		CentAmount:   parseCents(m.Amount),
		CurrencyCode: m.CurrencyCode,
	}
}

// parseCents converts the API's decimal string ("42.50") to cents. The
// sign is parsed up front so amounts between -1 and 0 keep it. Fractions
// beyond two digits are truncated; malformed input yields 0.
func parseCents(amount string) int64 {
	amount = strings.TrimSpace(amount)
	negative := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")
	if amount == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(amount, ".")
	cents, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || cents < 0 {
		return 0
	}
	cents *= 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		if f, err := strconv.ParseInt(frac, 10, 64); err == nil && f >= 0 {
			cents += f
		}
	}
	if negative {
		return -cents
	}
	return cents
}
