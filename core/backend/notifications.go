package backend

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/relabs-tech/kumande/core"
	"github.com/relabs-tech/kumande/core/logger"
)

// notification is the payload published for every committed mutation.
type notification struct {
	Resource  string         `json:"resource"`
	Operation core.Operation `json:"operation"`
	ID        string         `json:"id"`
	Data      object         `json:"data,omitempty"`
}

// notify publishes a change event after a successful commit. Notifier
// failures are logged and never surfaced to the client; the mutation
// has already been committed.
func (b *Backend) notify(ctx context.Context, resource string, operation core.Operation, id string, data object) {
	if b.notifier == nil {
		return
	}
	payload, _ := json.MarshalWithOption(notification{
		Resource:  resource,
		Operation: operation,
		ID:        id,
		Data:      data,
	}, json.DisableHTMLEscape())
	if err := b.notifier.Notify(resource, operation, payload); err != nil {
		logger.FromContext(ctx).WithError(err).Warnf("cannot notify %s on %s", operation, resource)
	}
}
