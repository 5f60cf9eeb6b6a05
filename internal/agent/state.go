package agent

import "github.com/abdul-hamid-achik/marketscout/internal/store"

// phase is the loop's position in its state machine
type phase int

const (
	phaseInit phase = iota
	phaseIterating
	phaseExecutingTools
	phaseGeneratingFinalAnswer
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseInit:
		return "init"
	case phaseIterating:
		return "iterating"
	case phaseExecutingTools:
		return "executing_tools"
	case phaseGeneratingFinalAnswer:
		return "generating_final_answer"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// runState accumulates everything a run gathers across iterations
type runState struct {
	phase      phase
	iteration  int
	scratchpad []string
	records    []ToolCallRecord
	summaries  []store.Summary // successful results only
}

// nextPhase is the pure transition function for the loop. wantsTools reports
// whether the model requested tool calls this iteration.
func nextPhase(s runState, maxIterations int, wantsTools bool) phase {
	switch s.phase {
	case phaseInit:
		return phaseIterating

	case phaseIterating:
		if !wantsTools {
			// Only a first-call text reply with nothing gathered is the
			// answer itself. Once tools have run, even all-failed ones,
			// the answer is composed from whatever was gathered.
			if s.iteration <= 1 && len(s.summaries) == 0 {
				return phaseDone
			}
			return phaseGeneratingFinalAnswer
		}
		return phaseExecutingTools

	case phaseExecutingTools:
		if s.iteration >= maxIterations {
			return phaseGeneratingFinalAnswer
		}
		return phaseIterating

	case phaseGeneratingFinalAnswer:
		return phaseDone
	}
	return phaseDone
}
