package plan

import (
	"errors"
	"testing"
	"time"
)

func TestPresent(t *testing.T) {
	now := time.Now()
	p := &TreatmentPlan{State: StateDraft}
	if err := p.Present(2, now); err != nil {
		t.Fatalf("present: %v", err)
	}
	if p.State != StatePresented {
		t.Fatalf("state = %s, want PRESENTED", p.State)
	}
	if p.PresentedAt == nil || !p.PresentedAt.Equal(now) {
		t.Fatalf("presented_at not recorded")
	}
}

func TestPresent_EmptyPlan(t *testing.T) {
	p := &TreatmentPlan{State: StateDraft}
	err := p.Present(0, time.Now())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if p.State != StateDraft {
		t.Fatalf("state changed on failed present")
	}
}

func TestPresent_WrongState(t *testing.T) {
	for _, st := range []State{StatePresented, StateAccepted, StateCompleted, StateCancelled} {
		p := &TreatmentPlan{State: st}
		if err := p.Present(1, time.Now()); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("present from %s: err = %v, want ErrInvalidTransition", st, err)
		}
	}
}

func TestAccept(t *testing.T) {
	now := time.Now()
	p := &TreatmentPlan{State: StatePresented}
	if err := p.Accept(now); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if p.State != StateAccepted || p.AcceptedAt == nil {
		t.Fatalf("accept did not record state and timestamp")
	}
}

func TestAccept_FromDraft(t *testing.T) {
	p := &TreatmentPlan{State: StateDraft}
	if err := p.Accept(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestReject(t *testing.T) {
	for _, st := range []State{StateDraft, StatePresented} {
		p := &TreatmentPlan{State: st}
		if err := p.Reject("too expensive"); err != nil {
			t.Fatalf("reject from %s: %v", st, err)
		}
		if p.State != StateRejected {
			t.Fatalf("state = %s, want REJECTED", p.State)
		}
		if p.RejectionReason == nil || *p.RejectionReason != "too expensive" {
			t.Fatalf("rejection reason not recorded")
		}
	}
}

func TestReject_FromAccepted(t *testing.T) {
	p := &TreatmentPlan{State: StateAccepted}
	if err := p.Reject(""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancel(t *testing.T) {
	for _, st := range []State{StateAccepted, StateInProgress} {
		p := &TreatmentPlan{State: st}
		if err := p.Cancel("patient moved away", time.Now()); err != nil {
			t.Fatalf("cancel from %s: %v", st, err)
		}
		if p.State != StateCancelled || p.CancelledAt == nil {
			t.Fatalf("cancel from %s did not record state and timestamp", st)
		}
		if p.CancellationReason == nil || *p.CancellationReason != "patient moved away" {
			t.Fatalf("cancellation reason not recorded")
		}
	}
}

func TestCancel_OnlyFromExecution(t *testing.T) {
	for _, st := range []State{StateDraft, StatePresented, StateCompleted, StateRejected, StateCancelled} {
		p := &TreatmentPlan{State: st}
		if err := p.Cancel("reason", time.Now()); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("cancel from %s: err = %v, want ErrInvalidTransition", st, err)
		}
		if p.State != st {
			t.Errorf("cancel from %s changed state", st)
		}
	}
}

func TestCancel_RequiresReason(t *testing.T) {
	p := &TreatmentPlan{State: StateAccepted}
	if err := p.Cancel("", time.Now()); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if p.State != StateAccepted {
		t.Fatalf("state changed on failed cancel")
	}
}

func TestStartProgress_Idempotent(t *testing.T) {
	p := &TreatmentPlan{State: StateAccepted}
	if err := p.startProgress(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if p.State != StateInProgress {
		t.Fatalf("state = %s, want IN_PROGRESS", p.State)
	}
	if err := p.startProgress(); err != nil {
		t.Fatalf("second start: %v", err)
	}
}

func TestComplete_RequiresInProgress(t *testing.T) {
	p := &TreatmentPlan{State: StateAccepted}
	if err := p.complete(time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestStateHelpers(t *testing.T) {
	if !StateCompleted.Terminal() || StateDraft.Terminal() {
		t.Fatalf("Terminal misclassifies states")
	}
	if !StateAccepted.InExecution() || StatePresented.InExecution() {
		t.Fatalf("InExecution misclassifies states")
	}
	if State("BOGUS").Valid() {
		t.Fatalf("Valid accepted unknown state")
	}
}
