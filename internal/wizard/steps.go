package wizard

// Step is a wizard screen.
type Step int

const (
	StepDiagnose Step = 1
	StepPatches  Step = 2
	StepTicket   Step = 3
)

func (s Step) String() string {
	switch s {
	case StepDiagnose:
		return "diagnose"
	case StepPatches:
		return "patches"
	case StepTicket:
		return "ticket"
	default:
		return "unknown"
	}
}

// Clamp limits s to the known steps.
func (s Step) Clamp() Step {
	return min(max(s, StepDiagnose), StepTicket)
}

// Next returns the step after cur. The patch review step is skipped when
// there is nothing to review.
func Next(cur Step, patchCount int) Step {
	next := cur.Clamp() + 1
	if next == StepPatches && patchCount == 0 {
		next++
	}
	return next.Clamp()
}

// Prev returns the step before cur with the same skip rule as Next.
func Prev(cur Step, patchCount int) Step {
	prev := cur.Clamp() - 1
	if prev == StepPatches && patchCount == 0 {
		prev--
	}
	return prev.Clamp()
}
