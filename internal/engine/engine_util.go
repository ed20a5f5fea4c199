package engine

func NewIdleState(kind Kind) State {
	return State{Kind: kind, Phase: PhaseIdle}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// PracticeResult returns the single credited result of a completed practice run.
func PracticeResult(s State) (Winner, bool) {
	if !s.Completed || len(s.Winners) == 0 {
		return Winner{}, false
	}
	return s.Winners[0], true
}
