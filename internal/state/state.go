// Package state holds the per-page state containers. A page builds the
// containers it needs when it mounts and closes them when it is done, which
// drops every subscription they registered.
package state

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Discard is a Notifier that drops every message.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
