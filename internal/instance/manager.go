package instance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/streamspace/automationd/internal/apperrors"
	"github.com/streamspace/automationd/internal/kinds"
	"github.com/streamspace/automationd/internal/logger"
)

// Context is handed to a Handler's OnInit. It exposes the Find contract a
// plugin uses to look up its dependencies by Predicate, and carries the
// instance's own Name for log scoping.
type Context struct {
	mgr  *Manager
	self *Instance
}

// Self returns the Instance this Context belongs to.
func (c *Context) Self() *Instance { return c.self }

// Find returns every Ready instance matching p. The Manager guarantees
// this never returns a non-Ready instance: by the time any Handler's
// OnInit runs, every Instance satisfying its Kind's Requires predicates
// has already completed OnInit and transitioned to Ready.
func (c *Context) Find(p kinds.Predicate) []*Instance {
	return c.mgr.Find(p)
}

// Manager owns the full set of constructed Instances for a process. It is
// the only thing that mutates Instance.state; Instances themselves never
// change their own lifecycle state.
type Manager struct {
	mu        sync.RWMutex
	instances []*Instance
	byName    map[string]*Instance
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*Instance)}
}

// Start constructs one Instance per Spec, in the dependency order computed
// over the Specs' Kinds, and runs each Instance's OnInit before moving on
// to Instances that depend on it. On any InstanceInitError the remaining
// Specs are left unconstructed and the error is returned — matching the
// original's all-or-nothing startup.
func (m *Manager) Start(ctx context.Context, reg *kinds.Registry, specs []kinds.Spec) error {
	byKind := make(map[string][]kinds.Spec)
	var kindSet []*kinds.Kind
	seen := make(map[string]bool)
	for _, spec := range specs {
		id := kindID(spec)
		byKind[id] = append(byKind[id], spec)
		if !seen[id] {
			seen[id] = true
			k, ok := reg.Get(id)
			if !ok {
				return apperrors.Config("instance.Manager.Start", fmt.Sprintf("no registered kind for spec %q", id), nil)
			}
			kindSet = append(kindSet, k)
		}
	}

	order, err := kinds.Resolve(kindSet)
	if err != nil {
		return err
	}

	for _, k := range order {
		kindSpecs := byKind[k.ID()]
		sort.SliceStable(kindSpecs, func(i, j int) bool {
			return specName(kindSpecs[i]) < specName(kindSpecs[j])
		})

		factory, ferr := lookupFactory(k.ID())
		if ferr != nil {
			return apperrors.InstanceInit(k.ID(), "no factory registered", ferr)
		}

		for _, spec := range kindSpecs {
			h, err := factory(spec)
			if err != nil {
				return apperrors.InstanceInit(k.ID(), "factory failed", err)
			}

			inst := &Instance{Kind: k, Spec: spec, Handler: h, state: Constructed}

			m.mu.Lock()
			m.instances = append(m.instances, inst)
			m.byName[inst.Name()] = inst
			m.mu.Unlock()

			inst.state = Initializing
			log := logger.Instance(k.Namespace, k.PluginType, inst.Name())
			log.Debug().Msg("initializing instance")

			ictx := &Context{mgr: m, self: inst}
			if err := h.OnInit(ctx, ictx); err != nil {
				inst.state = Closed
				return apperrors.InstanceInit(inst.Name(), "OnInit failed", err)
			}

			inst.state = Ready
			log.Info().Msg("instance ready")
		}
	}

	return nil
}

// Find returns every Ready instance matching p.
func (m *Manager) Find(p kinds.Predicate) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Instance
	for _, inst := range m.instances {
		if inst.state != Ready {
			continue
		}
		if p.Matches(inst.Kind) {
			out = append(out, inst)
		}
	}
	return out
}

// ByName returns the Ready-or-not instance registered under name, the same
// lookup config_data "name" fields use to cross-reference peers (e.g. an
// mq predicate naming a specific transport instance).
func (m *Manager) ByName(name string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.byName[name]
	return inst, ok
}

// Instances returns every constructed Instance regardless of state, in
// construction order.
func (m *Manager) Instances() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Instance, len(m.instances))
	copy(out, m.instances)
	return out
}

// Close transitions every Instance to Closing, calls Close on any Handler
// implementing Closer, and marks it Closed. Close errors are collected,
// not short-circuited, so one misbehaving plugin's teardown failure
// doesn't prevent its peers from also being closed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.RLock()
	instances := make([]*Instance, len(m.instances))
	copy(instances, m.instances)
	m.mu.RUnlock()

	// Close in reverse construction order, so a dependency outlives its
	// dependents during teardown.
	var errs []error
	for i := len(instances) - 1; i >= 0; i-- {
		inst := instances[i]
		inst.state = Closing
		if closer, ok := inst.Handler.(Closer); ok {
			if err := closer.Close(ctx); err != nil {
				errs = append(errs, apperrors.Operation(inst.Name(), "close failed", err))
			}
		}
		inst.state = Closed
	}

	return errors.Join(errs...)
}

func kindID(spec kinds.Spec) string {
	if spec.PluginType == "" {
		return spec.Namespace
	}
	return spec.Namespace + "/" + spec.PluginType
}

func specName(spec kinds.Spec) string {
	if spec.Data != nil {
		if n, ok := spec.Data["name"].(string); ok && n != "" {
			return n
		}
	}
	return kindID(spec)
}
