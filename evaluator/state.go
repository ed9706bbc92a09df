package evaluator

// State is the phase an evaluation is in.
type State uint32

const (
	Ready State = iota
	RunningTopLevel
	LayingOutType
	EvaluatingExpression
	CallingFunction
	Failed
	Done
)

var stateNames = [...]string{
	Ready:                "ready",
	RunningTopLevel:      "running",
	LayingOutType:        "laying out type",
	EvaluatingExpression: "evaluating expression",
	CallingFunction:      "calling function",
	Failed:               "failed",
	Done:                 "done",
}

func (s State) String() string { return stateNames[s] }

// State returns the phase of the running or last evaluation.
func (e *Evaluator) State() State { return State(e.state.Load()) }

func (e *Evaluator) setState(s State) { e.state.Store(uint32(s)) }

// transition switches to s and returns a func restoring the previous state.
func (e *Evaluator) transition(s State) func() {
	prev := e.state.Swap(uint32(s))
	return func() { e.state.Store(prev) }
}
