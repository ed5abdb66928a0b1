package server

import (
	"context"
	"fmt"
)

// pingable is any dependency with a context-aware Ping, such as
// *records.Store or *store.SQLiteStore.
type pingable interface {
	Ping(ctx context.Context) error
}

// DependencyPinger adapts a pingable dependency to the Pinger interface
// under a fixed readiness label.
type DependencyPinger struct {
	// name identifies the dependency in readiness responses.
	name string
	// dep is the dependency to probe.
	dep pingable
}

// NewDependencyPinger constructs a Pinger named name that probes dep.
func NewDependencyPinger(name string, dep pingable) *DependencyPinger {
	return &DependencyPinger{name: name, dep: dep}
}

// Name returns the dependency label used in readiness responses.
func (p *DependencyPinger) Name() string { return p.name }

// Ping probes the wrapped dependency.
func (p *DependencyPinger) Ping(ctx context.Context) error {
	if err := p.dep.Ping(ctx); err != nil {
		return fmt.Errorf("%s unavailable: %w", p.name, err)
	}
	return nil
}
