package cartid

import "context"

// Store persists the remote cart id per device so a returning visitor
// resumes the same cart. A missing id is reported as ("", nil), not an
// error; absence is a normal state for a first-time visitor.
type Store interface {
	Get(ctx context.Context, deviceID string) (string, error)
	Set(ctx context.Context, deviceID, cartID string) error
	Clear(ctx context.Context, deviceID string) error
}
