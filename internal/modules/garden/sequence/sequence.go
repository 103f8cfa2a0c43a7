// Package sequence assigns step ids and merges remediation steps into an existing
// growth timeline. Ids are positional at creation and never change afterwards;
// every lookup goes through the id, never the slice index.
package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/modules/garden/growthplan"
)

var ErrStepNotFound = errors.New("step not found")

// Policy decides where remediation goes when no step has been completed yet.
type Policy string

const (
	// PolicyHead puts remediation before every existing step.
	PolicyHead Policy = "head"
	// PolicyAppend puts remediation after every existing step.
	PolicyAppend Policy = "append"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyHead:
		return PolicyHead, nil
	case PolicyAppend:
		return PolicyAppend, nil
	default:
		return "", fmt.Errorf("unknown remediation insert policy %q", s)
	}
}

// Number turns freshly parsed drafts into steps with ids 1..N.
func Number(drafts []growthplan.StepDraft) []plant.GrowthStep {
	out := make([]plant.GrowthStep, len(drafts))
	for i, d := range drafts {
		out[i] = fromDraft(i+1, d)
	}
	return out
}

// InsertRemediation returns a new step list with drafts inserted right after the
// last completed step. New ids continue from the highest existing id.
func InsertRemediation(existing []plant.GrowthStep, drafts []growthplan.StepDraft, policy Policy) []plant.GrowthStep {
	out := make([]plant.GrowthStep, 0, len(existing)+len(drafts))
	if len(drafts) == 0 {
		return append(out, existing...)
	}

	at := insertionIndex(existing, policy)
	next := maxID(existing) + 1
	block := make([]plant.GrowthStep, len(drafts))
	for i, d := range drafts {
		block[i] = fromDraft(next+i, d)
	}

	out = append(out, existing[:at]...)
	out = append(out, block...)
	out = append(out, existing[at:]...)
	return out
}

// Complete marks the step with the given id as completed. Completion is monotonic,
// so completing an already completed step is a no-op. changed reports whether the
// list was modified.
func Complete(steps []plant.GrowthStep, id int) (out []plant.GrowthStep, changed bool, err error) {
	for i := range steps {
		if steps[i].ID != id {
			continue
		}
		if steps[i].IsCompleted {
			return steps, false, nil
		}
		out = make([]plant.GrowthStep, len(steps))
		copy(out, steps)
		out[i].IsCompleted = true
		return out, true, nil
	}
	return steps, false, fmt.Errorf("%w: id %d", ErrStepNotFound, id)
}

func insertionIndex(steps []plant.GrowthStep, policy Policy) int {
	last := -1
	for i, s := range steps {
		if s.IsCompleted {
			last = i
		}
	}
	if last >= 0 {
		return last + 1
	}
	if policy == PolicyAppend {
		return len(steps)
	}
	return 0
}

func maxID(steps []plant.GrowthStep) int {
	m := 0
	for _, s := range steps {
		if s.ID > m {
			m = s.ID
		}
	}
	return m
}

func fromDraft(id int, d growthplan.StepDraft) plant.GrowthStep {
	return plant.GrowthStep{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		EstimatedTime: d.EstimatedTime,
	}
}
