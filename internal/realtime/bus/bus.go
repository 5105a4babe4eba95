package bus

import (
	"context"

	"github.com/versatil/versatil-backend/internal/realtime"
)

// Bus carries realtime messages between instances. Publish satisfies
// realtime.Publisher; StartForwarder feeds received messages to a local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
