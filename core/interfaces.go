package core

// Notifier is an interface to receive entity change notifications.
//
// The backend calls Notify after a mutation has been committed. Notifier
// implementations must be go-routine safe.
type Notifier interface {
	Notify(resource string, operation Operation, payload []byte) error
}
