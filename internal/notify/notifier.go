// Package notify defines the channel sender contract and its email, push,
// and SMS implementations. The dispatcher depends only on Sender; adding a
// channel means registering another Sender.
package notify

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/donaldgifford/price-alert-dispatcher/pkg/types"
)

// Delivery is the rendered content for one attempt on one channel.
type Delivery struct {
	AttemptID      string
	NotificationID string
	Channel        domain.Channel
	Recipient      string
	Title          string
	Body           string
	Category       domain.Category
	Priority       domain.Priority
	Data           map[string]any
}

// OutcomeKind classifies the result of a send.
type OutcomeKind int

// Outcome kinds.
const (
	Succeeded OutcomeKind = iota
	TransientFailure
	PermanentFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case TransientFailure:
		return "transient"
	case PermanentFailure:
		return "permanent"
	default:
		return "unknown"
	}
}

// Outcome is what a Sender reports back to the dispatcher. Senders never
// return errors; every provider failure is folded into an Outcome.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Success returns a successful outcome.
func Success() Outcome { return Outcome{Kind: Succeeded} }

// Transient returns a retryable failure.
func Transient(format string, args ...any) Outcome {
	return Outcome{Kind: TransientFailure, Reason: fmt.Sprintf(format, args...)}
}

// Permanent returns a failure that must not be retried.
func Permanent(format string, args ...any) Outcome {
	return Outcome{Kind: PermanentFailure, Reason: fmt.Sprintf(format, args...)}
}

// Sender delivers to one channel.
type Sender interface {
	Channel() domain.Channel
	Send(ctx context.Context, d *Delivery) Outcome
}

// Registry maps channels to senders.
type Registry struct {
	mu      sync.RWMutex
	senders map[domain.Channel]Sender
}

// NewRegistry creates a registry holding senders.
func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[domain.Channel]Sender)}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

// Register adds s, replacing any sender already bound to its channel.
func (r *Registry) Register(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[s.Channel()] = s
}

// Get returns the sender for ch.
func (r *Registry) Get(ch domain.Channel) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[ch]
	return s, ok
}

// Channels returns the registered channels in stable order.
func (r *Registry) Channels() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Channel
	for _, ch := range domain.AllChannels {
		if _, ok := r.senders[ch]; ok {
			out = append(out, ch)
		}
	}
	return out
}
