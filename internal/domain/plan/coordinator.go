package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Item completion. An item completes either manually (work done outside a
// tracked visit) or by being linked to a clinical episode. Both paths run the
// same advance: completing the first item moves the plan to IN_PROGRESS, and
// completing the last moves it to COMPLETED, all in one transaction.

// CompleteItemManually marks an item completed without an episode link.
func (s *Service) CompleteItemManually(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	var out *Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if it.State == ItemCompleted {
			out = it
			return nil
		}
		p, err := s.plans.GetForUpdate(ctx, it.PlanID)
		if err != nil {
			return err
		}
		if !p.State.InExecution() {
			return fmt.Errorf("%w: plan must be accepted before work is recorded", ErrPlanLocked)
		}
		if err := s.completeItem(ctx, p, it, s.now()); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LinkEpisodeToItem attaches a clinical episode to an item, completing it.
// The item's realized date is the episode's occurrence date when given, so a
// visit recorded after the fact keeps its true date. Linking the same
// episode twice is a no-op; an item already linked to a different episode is
// a conflict.
func (s *Service) LinkEpisodeToItem(ctx context.Context, itemID, episodeID uuid.UUID, occurredAt *time.Time) (*Item, error) {
	if episodeID == uuid.Nil {
		return nil, fmt.Errorf("%w: episode_id is required", ErrValidation)
	}
	var out *Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if it.EpisodeID != nil {
			if *it.EpisodeID == episodeID {
				out = it
				return nil
			}
			return fmt.Errorf("%w: item %s is linked to episode %s", ErrEpisodeLinkConflict, it.ID, *it.EpisodeID)
		}
		p, err := s.plans.GetForUpdate(ctx, it.PlanID)
		if err != nil {
			return err
		}
		if !p.State.InExecution() {
			return fmt.Errorf("%w: plan must be accepted before work is recorded", ErrPlanLocked)
		}
		it.EpisodeID = &episodeID
		if it.State == ItemCompleted {
			// Manually completed earlier; record the link only.
			if err := s.items.Update(ctx, it); err != nil {
				return err
			}
			out = it
			return nil
		}
		realized := s.now()
		if occurredAt != nil {
			realized = *occurredAt
		}
		if err := s.completeItem(ctx, p, it, realized); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// completeItem marks the item done as of realized and advances the plan.
// Callers hold the plan row lock and run inside a transaction.
func (s *Service) completeItem(ctx context.Context, p *TreatmentPlan, it *Item, realized time.Time) error {
	it.State = ItemCompleted
	it.RealizedDate = &realized
	if err := s.items.Update(ctx, it); err != nil {
		return err
	}

	if err := p.startProgress(); err != nil {
		return err
	}
	prog, err := s.items.Progress(ctx, p.ID)
	if err != nil {
		return err
	}
	if prog.Completed == prog.Total {
		if err := p.complete(s.now()); err != nil {
			return err
		}
	}
	return s.plans.Update(ctx, p)
}
