package contract

import "context"

// StateRepository persists one serialized assistant snapshot per client.
type StateRepository interface {
	Get(ctx context.Context, clientId string) ([]byte, bool, error)
	Save(ctx context.Context, clientId string, data []byte) error
	Delete(ctx context.Context, clientId string) error
}
