package fsm

import "github.com/milk9111/statemachine/ecs"

// System sets registered by Install. Cleanup is always ordered after
// transition evaluation.
const (
	SetTransition        ecs.Set = "fsm.transition"
	SetRemoveDoneMarkers ecs.Set = "fsm.remove_done_markers"
)

var _ World = (*ecs.World)(nil)

type installConfig struct {
	after []ecs.Set
}

// InstallOption configures where the engine runs in a schedule.
type InstallOption func(*installConfig)

// RunAfter orders the transition pass after sets. By default it runs after
// ecs.DefaultSet, so gameplay systems can raise events and Done markers
// first.
func RunAfter(sets ...ecs.Set) InstallOption {
	return func(c *installConfig) { c.after = sets }
}

// Install registers the transition pass and the cleanup phase on s.
func (en *Engine) Install(s *ecs.Scheduler, opts ...InstallOption) {
	cfg := installConfig{after: []ecs.Set{ecs.DefaultSet}}
	for _, opt := range opts {
		opt(&cfg)
	}

	s.AddToSet(SetTransition, transitionSystem{en})
	s.AddToSet(SetRemoveDoneMarkers, cleanupSystem{en})
	if len(cfg.after) > 0 {
		s.Configure(SetTransition, ecs.After(cfg.after...))
	}
	s.Configure(SetRemoveDoneMarkers, ecs.After(SetTransition))
}

type transitionSystem struct{ engine *Engine }

func (s transitionSystem) Update(w *ecs.World) {
	s.engine.RunTransitionPass(w, s.engine.NextTick(w))
}

type cleanupSystem struct{ engine *Engine }

func (s cleanupSystem) Update(w *ecs.World) {
	s.engine.FinishTick(w)
}
