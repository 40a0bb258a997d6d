package sim

import (
	"fmt"
	"sync"
)

// A RoundEngine is an Engine that advances rounds one after another on a
// single goroutine. Within one round, the registered barriers run first, then
// every live agent is refreshed in registration order.
type RoundEngine struct {
	HookableBase

	roundLock sync.RWMutex
	round     Round

	barriers []Barrier
	agents   []Agent

	roundLimit Round

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewRoundEngine creates a RoundEngine.
func NewRoundEngine() *RoundEngine {
	e := new(RoundEngine)
	return e
}

// WithRoundLimit sets the maximum number of rounds the engine is allowed to
// advance. Run returns an error when the limit is hit with agents still live.
// A limit of 0 means no limit.
func (e *RoundEngine) WithRoundLimit(limit Round) *RoundEngine {
	e.roundLimit = limit
	return e
}

// RegisterBarrier adds a barrier to be advanced at the beginning of each
// round.
func (e *RoundEngine) RegisterBarrier(b Barrier) {
	e.barriers = append(e.barriers, b)
}

// RegisterAgent adds an agent to the live set.
func (e *RoundEngine) RegisterAgent(a Agent) {
	e.agents = append(e.agents, a)
}

func (e *RoundEngine) readRound() Round {
	e.roundLock.RLock()
	r := e.round
	e.roundLock.RUnlock()
	return r
}

func (e *RoundEngine) writeRound(r Round) {
	e.roundLock.Lock()
	e.round = r
	e.roundLock.Unlock()
}

// Run advances rounds until no agent is live anymore.
func (e *RoundEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for len(e.agents) > 0 {
		e.pauseLock.Lock()

		round := e.readRound() + 1
		if e.roundLimit > 0 && round > e.roundLimit {
			e.pauseLock.Unlock()
			return fmt.Errorf(
				"round limit %d exceeded with %d agents still live",
				e.roundLimit, len(e.agents))
		}
		e.writeRound(round)

		for _, b := range e.barriers {
			b.Advance()
		}

		hookCtx := HookCtx{
			Domain: e,
			Pos:    HookPosBeforeRound,
			Item:   round,
		}
		e.InvokeHook(hookCtx)

		e.refreshAgents(round)

		hookCtx.Pos = HookPosAfterRound
		e.InvokeHook(hookCtx)

		e.pauseLock.Unlock()
	}

	return nil
}

// refreshAgents refreshes every live agent in registration order and retains
// only the ones that report more activity. Agents only communicate through
// the medium snapshot established by the barriers, so the refresh order does
// not change simulation outcomes.
func (e *RoundEngine) refreshAgents(round Round) {
	live := e.agents[:0]

	for _, a := range e.agents {
		if a.Refresh() {
			live = append(live, a)
			continue
		}

		e.InvokeHook(HookCtx{
			Domain: e,
			Pos:    HookPosAgentDone,
			Item:   a,
			Detail: round,
		})
	}

	e.agents = live
}

// Pause prevents the RoundEngine from advancing more rounds.
func (e *RoundEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the RoundEngine to advance more rounds.
func (e *RoundEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentRound returns the round that the engine is at.
func (e *RoundEngine) CurrentRound() Round {
	return e.readRound()
}

// RegisterSimulationEndHandler registers a simulation end handler.
func (e *RoundEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function calls
// all the registered SimulationEndHandler.
func (e *RoundEngine) Finished() {
	round := e.readRound()
	for _, h := range e.simulationEndHandlers {
		h.Handle(round)
	}
}
