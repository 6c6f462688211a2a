package plan

import (
	"fmt"
	"time"
)

// Lifecycle transitions. Each mutates the plan in memory and leaves
// persistence to the caller, so a transition can be combined with other
// writes inside one transaction.

// Present moves a DRAFT plan to PRESENTED. A plan without items cannot be
// shown to a patient.
func (p *TreatmentPlan) Present(itemCount int, now time.Time) error {
	if p.State != StateDraft {
		return fmt.Errorf("%w: cannot present a %s plan", ErrInvalidTransition, p.State)
	}
	if itemCount == 0 {
		return fmt.Errorf("%w: add at least one procedure first", ErrValidation)
	}
	p.State = StatePresented
	p.PresentedAt = &now
	return nil
}

// Accept moves a PRESENTED plan to ACCEPTED, freezing its item set.
func (p *TreatmentPlan) Accept(now time.Time) error {
	if p.State != StatePresented {
		return fmt.Errorf("%w: cannot accept a %s plan", ErrInvalidTransition, p.State)
	}
	p.State = StateAccepted
	p.AcceptedAt = &now
	return nil
}

// Reject records the patient declining the plan. DRAFT is allowed as a
// source so a plan abandoned before presentation keeps its paper trail.
func (p *TreatmentPlan) Reject(reason string) error {
	if p.State != StateDraft && p.State != StatePresented {
		return fmt.Errorf("%w: cannot reject a %s plan", ErrInvalidTransition, p.State)
	}
	p.State = StateRejected
	if reason != "" {
		p.RejectionReason = &reason
	}
	return nil
}

// Cancel abandons a plan already in execution. Plans not yet accepted are
// rejected rather than cancelled; the reason is part of the clinical record.
func (p *TreatmentPlan) Cancel(reason string, now time.Time) error {
	if !p.State.InExecution() {
		return fmt.Errorf("%w: cannot cancel a %s plan", ErrInvalidTransition, p.State)
	}
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}
	p.State = StateCancelled
	p.CancellationReason = &reason
	p.CancelledAt = &now
	return nil
}

// startProgress moves ACCEPTED to IN_PROGRESS when the first item completes.
// Idempotent for plans already in progress.
func (p *TreatmentPlan) startProgress() error {
	switch p.State {
	case StateAccepted:
		p.State = StateInProgress
		return nil
	case StateInProgress:
		return nil
	}
	return fmt.Errorf("%w: cannot start work on a %s plan", ErrInvalidTransition, p.State)
}

// complete moves IN_PROGRESS to COMPLETED once every item is done.
func (p *TreatmentPlan) complete(now time.Time) error {
	if p.State != StateInProgress {
		return fmt.Errorf("%w: cannot complete a %s plan", ErrInvalidTransition, p.State)
	}
	p.State = StateCompleted
	p.CompletedAt = &now
	return nil
}
