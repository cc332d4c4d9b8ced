package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-bff/internal/domain"
)

// AddLine is a variant to put in the cart together with the display data
// the storefront captured at add time. The snapshot travels as line
// attributes so it survives on the platform side.
type AddLine struct {
	VariantID string
	Quantity  int
	Snapshot  domain.Snapshot
}

// LineUpdate addresses an existing cart line. The cart API keys its update
// and remove mutations by its own line ids, not by merchandise ids; LineID
// comes from the line's last decoded snapshot.
type LineUpdate struct {
	LineID   string
	Quantity int
}

// Client issues cart mutations against the Storefront GraphQL endpoint and
// normalizes every response into a full domain.Cart snapshot.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

const cartFields = `
id
checkoutUrl
totalQuantity
cost { totalAmount { amount currencyCode } }
lines(first: 100) {
  edges {
    node {
      id
      quantity
      cost { amountPerQuantity { amount currencyCode } }
      merchandise {
        ... on ProductVariant {
          id
          title
          product { title }
          image { url }
          selectedOptions { name value }
        }
      }
    }
  }
}
`

var (
	queryCartCreate = fmt.Sprintf(`
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { %s }
    userErrors { code field message }
  }
}`, cartFields)

	queryCartLinesAdd = fmt.Sprintf(`
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { %s }
    userErrors { code field message }
  }
}`, cartFields)

	queryCartLinesUpdate = fmt.Sprintf(`
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { %s }
    userErrors { code field message }
  }
}`, cartFields)

	queryCartLinesRemove = fmt.Sprintf(`
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { %s }
    userErrors { code field message }
  }
}`, cartFields)

	queryCartFetch = fmt.Sprintf(`
query cartFetch($cartId: ID!) {
  cart(id: $cartId) { %s }
}`, cartFields)
)

// CreateCart creates a remote cart holding the given lines and returns the
// platform's full snapshot, including the assigned cart id.
func (c *Client) CreateCart(ctx context.Context, lines []AddLine) (*domain.Cart, error) {
	return c.mutate(ctx, "cartCreate", queryCartCreate, map[string]interface{}{
		"input": map[string]interface{}{"lines": addLinesInput(lines)},
	})
}

// AddLines adds lines to an existing cart. Adding a variant that is
// already present increments its quantity server-side.
func (c *Client) AddLines(ctx context.Context, cartID string, lines []AddLine) (*domain.Cart, error) {
	return c.mutate(ctx, "cartLinesAdd", queryCartLinesAdd, map[string]interface{}{
		"cartId": cartID,
		"lines":  addLinesInput(lines),
	})
}

// UpdateLines sets absolute quantities for the given cart lines.
func (c *Client) UpdateLines(ctx context.Context, cartID string, updates []LineUpdate) (*domain.Cart, error) {
	lines := make([]map[string]interface{}, 0, len(updates))
	for _, u := range updates {
		lines = append(lines, map[string]interface{}{
			"id":       u.LineID,
			"quantity": u.Quantity,
		})
	}
	return c.mutate(ctx, "cartLinesUpdate", queryCartLinesUpdate, map[string]interface{}{
		"cartId": cartID,
		"lines":  lines,
	})
}

// RemoveLines removes the given cart lines.
func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (*domain.Cart, error) {
	return c.mutate(ctx, "cartLinesRemove", queryCartLinesRemove, map[string]interface{}{
		"cartId":  cartID,
		"lineIds": lineIDs,
	})
}

// RetrieveCart fetches a cart by id. A null cart in the response means the
// platform no longer knows the id (expired or already checked out) and is
// reported as domain.ErrNotFound.
func (c *Client) RetrieveCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	raw, err := c.do(ctx, queryCartFetch, map[string]interface{}{"cartId": cartID}, "cart")
	if err != nil {
		return nil, err
	}
	var cart *wireCart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("decode cart: %w", err)}
	}
	if cart == nil {
		return nil, domain.ErrNotFound
	}
	return toDomainCart(cart), nil
}

func (c *Client) mutate(ctx context.Context, field, query string, vars map[string]interface{}) (*domain.Cart, error) {
	raw, err := c.do(ctx, query, vars, field)
	if err != nil {
		return nil, err
	}
	var payload cartPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("decode %s payload: %w", field, err)}
	}
	if len(payload.UserErrors) > 0 {
		ue := payload.UserErrors[0]
		return nil, &domain.PlatformError{Code: ue.Code, Message: ue.Message}
	}
	if payload.Cart == nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("%s: empty cart in response", field)}
	}
	return toDomainCart(payload.Cart), nil
}

func (c *Client) do(ctx context.Context, query string, vars map[string]interface{}, field string) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.TransportError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, snippet)}
	}

	var out graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &domain.TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Errors) > 0 {
		return nil, &domain.TransportError{Err: fmt.Errorf("graphql: %s", out.Errors[0].Message)}
	}

	raw, ok := out.Data[field]
	if !ok {
		return nil, &domain.TransportError{Err: fmt.Errorf("missing %q in response", field)}
	}
	return raw, nil
}

func addLinesInput(lines []AddLine) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		entry := map[string]interface{}{
			"merchandiseId": line.VariantID,
			"quantity":      line.Quantity,
		}
		if attrs := snapshotAttributes(line.Snapshot); len(attrs) > 0 {
			entry["attributes"] = attrs
		}
		out = append(out, entry)
	}
	return out
}

func snapshotAttributes(snap domain.Snapshot) []map[string]string {
	var attrs []map[string]string
	if snap.Title != "" {
		attrs = append(attrs, map[string]string{"key": "_title", "value": snap.Title})
	}
	if snap.VariantTitle != "" {
		attrs = append(attrs, map[string]string{"key": "_variant", "value": snap.VariantTitle})
	}
	if snap.ImageURL != "" {
		attrs = append(attrs, map[string]string{"key": "_image", "value": snap.ImageURL})
	}
	return attrs
}
