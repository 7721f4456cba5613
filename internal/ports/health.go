package ports

import "context"

type HealthPort interface {
	Ping(ctx context.Context) error
}
