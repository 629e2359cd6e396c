// Package instance implements the Instance Manager: construction of
// concrete plugin instances in dependency order, their OnInit lifecycle,
// and the Find contract peers use to look each other up at runtime.
//
// Handler and the factory registry live here rather than in kinds, even
// though a Kind and its Handler are conceptually paired, because plugin
// packages need to reach both kinds (to register their Kind) and instance
// (to build Handlers) — putting Handler in kinds would make kinds import
// instance and instance import kinds, a cycle. Plugin packages depend on
// both leaf packages instead.
package instance

import (
	"context"

	"github.com/streamspace/automationd/internal/kinds"
)

// Handler is the interface every plugin instance implements. Embedding Base
// gives a plugin every no-op default so it only needs to override what it
// actually uses — the same "only override what you need" pattern the
// teacher's BasePlugin follows.
type Handler interface {
	// OnInit runs once, after every dependency of this instance has
	// reached Ready. It must not block on long-running work; an ingress
	// adapter that needs a background listener starts its own goroutine
	// here and returns immediately.
	OnInit(ctx context.Context, ictx *Context) error
}

// Closer is implemented by Handlers that hold resources needing explicit
// teardown (open sockets, background goroutines) when the Manager closes.
type Closer interface {
	Close(ctx context.Context) error
}

// Base provides no-op defaults for Handler. Embed it in a concrete plugin
// struct to avoid writing an empty OnInit for plugins that do all their
// work reactively, from hook callbacks.
type Base struct{}

// OnInit is a no-op default; override it in the embedding type when setup
// work is needed.
func (Base) OnInit(ctx context.Context, ictx *Context) error { return nil }

// Factory constructs a fresh Handler for one bound Spec. Factories are
// stateless; the Manager calls one per Spec it constructs.
type Factory func(spec kinds.Spec) (Handler, error)

// State is the lifecycle state of one Instance, matching the state machine
// of the original Instance: Unborn, Constructed, Initializing, Ready,
// Closing, Closed.
type State int

const (
	Unborn State = iota
	Constructed
	Initializing
	Ready
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Unborn:
		return "unborn"
	case Constructed:
		return "constructed"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Instance is one constructed plugin: its Kind, its bound configuration,
// its Handler, and its current lifecycle State. The Manager is the only
// thing that mutates an Instance's State.
type Instance struct {
	Kind    *kinds.Kind
	Spec    kinds.Spec
	Handler Handler
	state   State
}

// Name returns the instance's config-declared name, falling back to its
// Kind ID when config_data carries none (the original's anonymous default
// instance for an uncovered plugin_type).
func (i *Instance) Name() string {
	if i.Spec.Data != nil {
		if n, ok := i.Spec.Data["name"].(string); ok && n != "" {
			return n
		}
	}
	return i.Kind.ID()
}

// State returns the instance's current lifecycle state.
func (i *Instance) State() State { return i.state }
