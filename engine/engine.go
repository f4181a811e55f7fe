// Package engine ties the parser, action pipeline, fuse/daemon sweep, and
// narration layer into the per-command Step loop (spec.md §4, C10). It is
// the orchestrator a blueprint's compiled definitions and a front end (cli,
// tui) are both built around.
package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/questcore/engine/narrate"
	"github.com/nathoo/questcore/engine/parser"
	"github.com/nathoo/questcore/engine/pipeline"
	"github.com/nathoo/questcore/engine/save"
	"github.com/nathoo/questcore/engine/scope"
	"github.com/nathoo/questcore/engine/state"
	gtime "github.com/nathoo/questcore/engine/time"
	"github.com/nathoo/questcore/engine/vocab"
	"github.com/nathoo/questcore/types"
)

// Engine holds the game definitions and mutable state, plus every
// collaborator a turn needs: vocabulary, the action pipeline, the
// fuse/daemon sweep, and the message catalog.
type Engine struct {
	GameID    string
	State     *types.GameState
	Vocab     *vocab.Vocabulary
	Pipeline  *pipeline.Registry
	Time      *gtime.Registry
	Messenger *narrate.Messenger
	Describer *narrate.DescriptionHandlerRegistry
	RNG       *RNG

	blueprint *state.Blueprint
}

// New creates an Engine from a compiled blueprint and its wired
// collaborators (built by the blueprint loader from the game's Lua
// definitions).
func New(gameID string, bp *state.Blueprint, v *vocab.Vocabulary, p *pipeline.Registry, t *gtime.Registry, msgr *narrate.Messenger) *Engine {
	return &Engine{
		GameID:    gameID,
		State:     state.NewState(bp),
		Vocab:     v,
		Pipeline:  p,
		Time:      t,
		Messenger: msgr,
		Describer: narrate.NewDescriptionHandlerRegistry(msgr),
		RNG:       NewRNG(bp.RNGSeed),
		blueprint: bp,
	}
}

// Intro returns the game's opening text: its introduction followed by the
// long description of the starting location.
func (e *Engine) Intro() []string {
	var lines []string
	if e.blueprint.Introduction != "" {
		lines = append(lines, e.blueprint.Introduction)
	}
	sc := scope.Resolve(e.State)
	lines = append(lines, narrate.DescribeLocation(e.State, sc, e.Messenger, true)...)
	e.State.Visited[e.State.Player.Location] = struct{}{}
	return lines
}

// Step processes one player command: parse, dispatch through the action
// pipeline, render the result location if the verb moved or looked, sweep
// fuses/daemons, and advance the turn counter. A non-nil error means a
// change batch violated an invariant and was rolled back whole — the turn
// did not advance and State is unchanged.
func (e *Engine) Step(input string) (types.Result, error) {
	var result types.Result

	if strings.TrimSpace(input) == "" {
		result.Output = []string{"What do you want to do?"}
		return result, nil
	}

	sc := scope.Resolve(e.State)
	cmd, err := parser.Parse(input, e.Vocab, e.State, sc)
	if err != nil {
		result.Output = []string{err.Error()}
		return result, nil
	}

	// change.Apply replaces the state's maps rather than mutating them, so
	// a shallow copy is enough to restore the pre-command state.
	saved := *e.State
	result, err = e.Pipeline.Dispatch(e.State, cmd)
	if err != nil {
		*e.State = saved
		return types.Result{}, err
	}
	result.Output, result.Meta = extractMeta(result.Output)

	if result.Meta == "" && !result.Vetoed && (cmd.Verb == "go" || cmd.Verb == "look") {
		sc = scope.Resolve(e.State)
		forceLong := cmd.Verb == "look"
		result.Output = append(result.Output, narrate.DescribeLocation(e.State, sc, e.Messenger, forceLong)...)
		e.State.Visited[e.State.Player.Location] = struct{}{}
	}

	// A Vetoed result is a verb-level failure: a user-visible message with no
	// state change. It must not advance the turn or trigger the fuse/daemon
	// sweep (spec.md §4.5, §8 property 4).
	if result.Meta == "" && !result.Vetoed {
		fuseEvents, fuseOut := e.Time.Advance(e.State)
		result.Events = append(result.Events, fuseEvents...)
		result.Output = append(result.Output, fuseOut...)
		e.State.Turn++
	}

	e.State.RNGPosition = e.RNG.Position()
	return result, nil
}

// extractMeta pulls the "__meta__:<kind>" sentinel line, if present, out of
// a handler's output lines (see pipeline.verbMeta).
func extractMeta(lines []string) ([]string, string) {
	var out []string
	meta := ""
	for _, l := range lines {
		if strings.HasPrefix(l, "__meta__:") {
			meta = strings.TrimPrefix(l, "__meta__:")
			continue
		}
		out = append(out, l)
	}
	return out, meta
}

// Save serializes the current state under the engine's game id.
func (e *Engine) Save() ([]byte, error) {
	e.State.RNGPosition = e.RNG.Position()
	return save.Marshal(e.GameID, e.State)
}

// Restore replaces the engine's state wholesale from loaded save data,
// re-creating the RNG at its saved position so future rolls are
// deterministic from where the save left off.
func (e *Engine) Restore(data []byte) error {
	sd, err := save.Unmarshal(data)
	if err != nil {
		return err
	}
	if sd.GameID != e.GameID {
		return &save.CorruptSave{Reason: fmt.Sprintf("save is for game %q, not %q", sd.GameID, e.GameID)}
	}
	e.State = save.Restore(sd)
	e.RNG = RestoreRNG(e.State.RNGSeed, e.State.RNGPosition)
	return nil
}

// Restart rebuilds a fresh GameState from the original blueprint, discarding
// all progress.
func (e *Engine) Restart() {
	e.State = state.NewState(e.blueprint)
	e.RNG = NewRNG(e.blueprint.RNGSeed)
}
