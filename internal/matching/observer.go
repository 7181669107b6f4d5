package matching

import "time"

// Observer receives notifications about solver runs and matching edits.
type Observer interface {
	SolveFinished(mode Mode, elapsed time.Duration, pairs int)
	FallbackUsed(mode Mode, reason string)
	MatchingEdited(op string, mean float64)
}

type nopObserver struct{}

func (nopObserver) SolveFinished(Mode, time.Duration, int) {}
func (nopObserver) FallbackUsed(Mode, string)              {}
func (nopObserver) MatchingEdited(string, float64)         {}
