package letter

import (
	"fmt"

	apperrors "go-elms/pkg/errors"
)

// ProjectStatus derives the lifecycle status from workflow progress. It is
// the only place a status value is computed.
func ProjectStatus(submitted bool, steps []WorkflowStep, signed bool) Status {
	if signed {
		return StatusSigned
	}
	if !submitted {
		return StatusDraft
	}
	allApproved := len(steps) > 0
	for _, s := range steps {
		if s.Status == StepRejected {
			return StatusRejected
		}
		if s.Status != StepApproved {
			allApproved = false
		}
	}
	if allApproved {
		return StatusApproved
	}
	return StatusPendingApproval
}

func Project(l *Letter) Status {
	return ProjectStatus(l.SubmittedAt != nil, l.Workflow, l.Signature != nil)
}

// IsTerminal reports whether no workflow operation can move the letter further.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusSigned
}

func invariantError(l *Letter, reason string) error {
	return &apperrors.InvalidStateError{
		Resource:  "letter",
		ID:        l.ID,
		State:     string(l.Status),
		Operation: "store",
		Reason:    reason,
	}
}

// CheckInvariants validates a record before any store writes it.
func CheckInvariants(l *Letter) error {
	if l.ID == "" {
		return apperrors.NewValidationError("id", "letter id is required")
	}
	if l.Reference == "" {
		return apperrors.NewValidationError("reference", "letter reference is required")
	}
	if l.CurrentStepIndex < 0 || l.CurrentStepIndex > len(l.Workflow) {
		return invariantError(l, fmt.Sprintf("current step index %d outside [0, %d]", l.CurrentStepIndex, len(l.Workflow)))
	}

	prevLevel := 0
	for _, s := range l.Workflow {
		if s.Level <= prevLevel {
			return invariantError(l, "workflow levels must be strictly ascending from 1")
		}
		prevLevel = s.Level
	}

	leading := 0
	for leading < len(l.Workflow) && l.Workflow[leading].Status == StepApproved {
		leading++
	}
	if l.CurrentStepIndex != leading {
		return invariantError(l, fmt.Sprintf("current step index %d does not match %d approved steps", l.CurrentStepIndex, leading))
	}
	if leading < len(l.Workflow) {
		for _, s := range l.Workflow[leading+1:] {
			if s.Status != StepPending {
				return invariantError(l, fmt.Sprintf("step level %d acted on out of order", s.Level))
			}
		}
	}

	if l.SubmittedAt == nil && len(l.Workflow) > 0 {
		return invariantError(l, "draft letters carry no workflow")
	}
	if l.SubmittedAt != nil && len(l.Workflow) == 0 {
		return invariantError(l, "submitted letters need an approval chain")
	}
	if l.Signature != nil && (len(l.Workflow) == 0 || leading != len(l.Workflow)) {
		return invariantError(l, "only fully approved letters can be signed")
	}

	if want := Project(l); l.Status != want {
		return invariantError(l, fmt.Sprintf("status %q does not match workflow (%q)", l.Status, want))
	}
	if (l.Status == StatusApproved || l.Status == StatusSigned) && l.ApprovedAt == nil {
		return invariantError(l, "approved letters need approved_at")
	}
	if l.Status == StatusSigned && l.SignedAt == nil {
		return invariantError(l, "signed letters need signed_at")
	}
	return nil
}

// checkTransition guards properties that span two versions of a record.
func checkTransition(prev, next *Letter) error {
	if next.ID != prev.ID {
		return apperrors.NewValidationError("id", "letter id is immutable")
	}
	if next.Reference != prev.Reference {
		return apperrors.NewValidationError("reference", "letter reference is immutable")
	}
	if next.CreatedBy != prev.CreatedBy || !next.CreatedAt.Equal(prev.CreatedAt) {
		return apperrors.NewValidationError("created_by", "letter authorship is immutable")
	}
	if len(next.History) < len(prev.History) {
		return invariantError(prev, "history is append-only")
	}
	for i := range prev.History {
		if next.History[i].ID != prev.History[i].ID || next.History[i].Action != prev.History[i].Action {
			return invariantError(prev, "history is append-only")
		}
	}
	if next.Status != prev.Status && len(next.History) != len(prev.History)+1 {
		return invariantError(prev, "a status change must append exactly one history event")
	}
	if prev.Status.IsTerminal() && next.Status != prev.Status {
		return invariantError(prev, "letter is in a terminal state")
	}
	if prev.Signature != nil && (next.Signature == nil || next.Signature.Checksum != prev.Signature.Checksum) {
		return invariantError(prev, "signature is immutable")
	}
	return nil
}
