// Package time implements the fuse/daemon subsystem (spec.md §4.7, C9):
// timed (fuse) and recurring (daemon) background behavior, swept once per
// turn after the action pipeline runs. Fuses fire before daemons; within
// each set, registration order is preserved.
package time

import "github.com/nathoo/questcore/types"

// FuseFunc runs once, when a fuse's remaining-turns counter reaches zero.
// DaemonFunc runs every turn the daemon is active.
type FuseFunc func(s *types.GameState) ([]types.Event, []string)
type DaemonFunc func(s *types.GameState) ([]types.Event, []string)

// Registry holds the behavior a blueprint wires to fuse/daemon ids. The
// live countdown state (which fuses/daemons are currently active, and how
// many turns a fuse has left) lives in types.GameState itself, since it must
// be part of the serializable save — the Registry only holds the closures.
type Registry struct {
	fuses       map[types.FuseID]FuseFunc
	daemons     map[types.DaemonID]DaemonFunc
	fuseOrder   []types.FuseID
	daemonOrder []types.DaemonID
}

func NewRegistry() *Registry {
	return &Registry{fuses: map[types.FuseID]FuseFunc{}, daemons: map[types.DaemonID]DaemonFunc{}}
}

// RegisterFuse installs a fuse's fire behavior, in declaration order.
func (r *Registry) RegisterFuse(id types.FuseID, fn FuseFunc) {
	if _, exists := r.fuses[id]; !exists {
		r.fuseOrder = append(r.fuseOrder, id)
	}
	r.fuses[id] = fn
}

// RegisterDaemon installs a daemon's per-turn behavior, in declaration order.
func (r *Registry) RegisterDaemon(id types.DaemonID, fn DaemonFunc) {
	if _, exists := r.daemons[id]; !exists {
		r.daemonOrder = append(r.daemonOrder, id)
	}
	r.daemons[id] = fn
}

// Advance runs the once-per-turn sweep: decrement every active fuse, firing
// (and deactivating) any that reach zero, then run every active daemon.
func (r *Registry) Advance(s *types.GameState) ([]types.Event, []string) {
	var events []types.Event
	var out []string

	for _, id := range r.fuseOrder {
		turns, active := s.ActiveFuses[id]
		if !active {
			continue
		}
		turns--
		if turns > 0 {
			s.ActiveFuses[id] = turns
			continue
		}
		delete(s.ActiveFuses, id)
		if fn, ok := r.fuses[id]; ok {
			ev, lines := fn(s)
			events = append(events, ev...)
			out = append(out, lines...)
		}
	}

	for _, id := range r.daemonOrder {
		if _, active := s.ActiveDaemons[id]; !active {
			continue
		}
		if fn, ok := r.daemons[id]; ok {
			ev, lines := fn(s)
			events = append(events, ev...)
			out = append(out, lines...)
		}
	}

	return events, out
}
