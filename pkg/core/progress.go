package core

import "math"

// CompletedMessage is the status message of a fully completed timeline.
const CompletedMessage = "Service Completed"

// Progress is what a timeline says about an engagement.
type Progress struct {
	Percent       int
	StatusMessage string
}

// ComputeProgress derives the progress percentage and a suggested status message
// from a timeline. Completed steps weigh 1, in-progress steps 0.5, pending steps 0.
//
// ok is false for an empty timeline; the caller keeps its current values.
func ComputeProgress(steps []TimelineStep) (p Progress, ok bool) {
	if len(steps) == 0 {
		return Progress{}, false
	}

	var points float64
	var inProgress, pending *TimelineStep
	for i := range steps {
		switch steps[i].Status {
		case StepCompleted:
			points++
		case StepInProgress:
			points += 0.5
			if inProgress == nil {
				inProgress = &steps[i]
			}
		default:
			// unknown statuses count as not started
			if pending == nil {
				pending = &steps[i]
			}
		}
	}

	p.Percent = int(math.Round(100 * points / float64(len(steps))))
	switch {
	case inProgress != nil:
		p.StatusMessage = inProgress.Label
	case pending != nil:
		p.StatusMessage = "Pending: " + pending.Label
	default:
		p.Percent = 100
		p.StatusMessage = CompletedMessage
	}
	return p, true
}
