package session

// Stage is the page a candidate should be on.
type Stage int

const (
	StageEmailGate Stage = iota
	StageInstructions
	StageWorkspace
	StageThanks
)

func (s Stage) String() string {
	switch s {
	case StageEmailGate:
		return "email-gate"
	case StageInstructions:
		return "instructions"
	case StageWorkspace:
		return "workspace"
	case StageThanks:
		return "thanks"
	default:
		return "unknown"
	}
}

// Step returns the 1-based step number shown in page headers ("Step 3 of 4").
func (s Stage) Step() int {
	return int(s) + 1
}

// StageCount is the number of stages in the flow.
const StageCount = 4

// Stage derives the current page from persisted state.
func (s *Store) Stage() (Stage, error) {
	email, err := s.Email()
	if err != nil {
		return StageEmailGate, err
	}
	if email == "" {
		return StageEmailGate, nil
	}

	done, err := s.Completed()
	if err != nil {
		return StageEmailGate, err
	}
	if done {
		return StageThanks, nil
	}

	_, started, err := s.StartedAt()
	if err != nil {
		return StageEmailGate, err
	}
	if started {
		return StageWorkspace, nil
	}
	return StageInstructions, nil
}
