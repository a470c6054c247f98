// Package messagequeue defines the compile event publishing port.
package messagequeue

import "context"

// Publisher sends compile events to a message broker.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the connection.
	Close() error
}

// SubjectScenarioCompiled is published after every successful compilation.
const SubjectScenarioCompiled = "scenario.compiled"

// Nop is a Publisher that discards every message. Used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, []byte) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
