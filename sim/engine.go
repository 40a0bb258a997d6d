package sim

// Round is the discrete simulation time unit. One round corresponds to one
// medium propagation step followed by one refresh pass over all live agents.
type Round int64

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// RoundTeller can be used to get the current round.
type RoundTeller interface {
	CurrentRound() Round
}

// An Agent is a unit that is refreshed once per round. Refresh returns false
// when the agent has no more activity, at which point the engine drops it from
// the live set.
type Agent interface {
	Named
	Refresh() bool
}

// A Barrier is advanced exactly once per round, before any agent is refreshed.
// The medium's propagation step registers here so that all agents of a round
// observe the same post-propagation snapshot.
type Barrier interface {
	Advance()
}

// A SimulationEndHandler is a handler that is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now Round)
}

// An Engine is a unit that keeps the round-synchronous simulation running.
type Engine interface {
	Hookable
	RoundTeller

	// RegisterBarrier adds a barrier that is advanced at the beginning of
	// every round.
	RegisterBarrier(b Barrier)

	// RegisterAgent adds an agent to the live set. Agents are refreshed in
	// registration order.
	RegisterAgent(a Agent)

	// Run advances rounds until no live agent remains.
	Run() error

	// Pause will pause the simulation until Continue is called.
	Pause()

	// Continue will continue the paused simulation.
	Continue()

	// RegisterSimulationEndHandler registers a handler that performs some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler.
	Finished()
}
