package service

import (
	"context"
	"time"

	"github.com/pageflow/internal/db"
	"github.com/pageflow/internal/rbac"
	"github.com/pageflow/internal/store"
)

// transition describes one lifecycle edge. An empty from list means any state.
type transition struct {
	action  rbac.Action
	to      db.PageState
	from    []db.PageState
	notSame bool
	stamp   func(page *db.Page, prior db.PageState, now time.Time, actor Actor)
}

func (t transition) allows(current db.PageState) bool {
	if t.notSame && current == t.to {
		return false
	}
	if len(t.from) == 0 {
		return true
	}
	for _, state := range t.from {
		if state == current {
			return true
		}
	}
	return false
}

func stampSubmitted(page *db.Page, _ db.PageState, now time.Time, _ Actor) {
	page.SubmittedAt = &now
}

func stampApproved(page *db.Page, _ db.PageState, now time.Time, actor Actor) {
	approver := actor.ID
	page.ApprovedAt = &now
	page.ApprovedBy = &approver
}

// stampPublished records the go-live time only for the Approved to Live edge.
func stampPublished(page *db.Page, prior db.PageState, now time.Time, _ Actor) {
	if prior == db.StateApproved {
		page.PublishAt = &now
	}
}

func stampExpired(page *db.Page, _ db.PageState, now time.Time, _ Actor) {
	page.ExpireAt = &now
}

var (
	submitTransition = transition{
		action: rbac.ActionSubmit,
		to:     db.StatePendingApproval,
		from:   []db.PageState{db.StateDraft, db.StateRejected},
		stamp:  stampSubmitted,
	}
	approveTransition = transition{
		action: rbac.ActionApprove,
		to:     db.StateApproved,
		from:   []db.PageState{db.StatePendingApproval},
		stamp:  stampApproved,
	}
	publishTransition = transition{
		action: rbac.ActionPublish,
		to:     db.StateLive,
		from:   []db.PageState{db.StateApproved},
		stamp:  stampPublished,
	}
	draftTransition = transition{
		action: rbac.ActionMoveDraft,
		to:     db.StateDraft,
	}
	expireTransition = transition{
		action:  rbac.ActionExpire,
		to:      db.StateExpired,
		notSame: true,
		stamp:   stampExpired,
	}
)

// setStateTransitions is the table behind SetState. Draft, Live and Expired are
// reachable by everyone; the review states are administrative corrections.
var setStateTransitions = map[db.PageState]transition{
	db.StateDraft:   draftTransition,
	db.StateLive:    {action: rbac.ActionPublish, to: db.StateLive, stamp: stampPublished},
	db.StateExpired: expireTransition,
	db.StatePendingApproval: {
		action: rbac.ActionCorrect, to: db.StatePendingApproval, notSame: true,
	},
	db.StateApproved: {
		action: rbac.ActionCorrect, to: db.StateApproved, notSame: true,
	},
	db.StateRejected: {
		action: rbac.ActionCorrect, to: db.StateRejected, notSame: true,
	},
}

// SubmitForApproval moves a Draft or Rejected page into the approval queue.
func (s *PageService) SubmitForApproval(ctx context.Context, id string, actor Actor) (*db.Page, error) {
	return s.transition(ctx, id, actor, submitTransition)
}

// Approve accepts a pending page. The approver is always the acting user.
func (s *PageService) Approve(ctx context.Context, id string, actor Actor) (*db.Page, error) {
	return s.transition(ctx, id, actor, approveTransition)
}

// Reject sends a pending page back to its author with a reason.
func (s *PageService) Reject(ctx context.Context, id string, actor Actor, reason string) (*db.Page, error) {
	if err := actor.Authorize(rbac.ActionReject); err != nil {
		return nil, err
	}
	cleaned := s.plainText(reason)
	if cleaned == "" {
		return nil, invalid("reason", "rejection reason is required")
	}

	return s.transition(ctx, id, actor, transition{
		action: rbac.ActionReject,
		to:     db.StateRejected,
		from:   []db.PageState{db.StatePendingApproval},
		stamp: func(page *db.Page, _ db.PageState, now time.Time, actor Actor) {
			reviewer := actor.ID
			page.RejectedAt = &now
			page.ApprovedBy = &reviewer
			page.RejectionReason = &cleaned
		},
	})
}

// Publish takes an Approved page live.
func (s *PageService) Publish(ctx context.Context, id string, actor Actor) (*db.Page, error) {
	return s.transition(ctx, id, actor, publishTransition)
}

// MoveToDraft returns a page to editing from any state.
func (s *PageService) MoveToDraft(ctx context.Context, id string, actor Actor) (*db.Page, error) {
	return s.transition(ctx, id, actor, draftTransition)
}

// MarkExpired retires a page.
func (s *PageService) MarkExpired(ctx context.Context, id string, actor Actor) (*db.Page, error) {
	return s.transition(ctx, id, actor, expireTransition)
}

// SetState is the generic state setter used by the workflow board.
func (s *PageService) SetState(ctx context.Context, id string, target db.PageState, actor Actor) (*db.Page, error) {
	t, ok := setStateTransitions[target]
	if !ok {
		if err := actor.Authorize(rbac.ActionEdit); err != nil {
			return nil, err
		}
		return nil, invalid("state", "unknown page state")
	}
	return s.transition(ctx, id, actor, t)
}

func (s *PageService) transition(ctx context.Context, id string, actor Actor, t transition) (*db.Page, error) {
	if err := actor.Authorize(t.action); err != nil {
		return nil, err
	}

	var prior db.PageState
	page, err := s.withPage(ctx, id, func(tx store.Store, page *db.Page) error {
		prior = page.State
		if !t.allows(page.State) {
			return &TransitionError{PageID: page.ID, From: page.State, To: t.to}
		}

		now := s.now()
		page.State = t.to
		if t.stamp != nil {
			t.stamp(page, prior, now, actor)
		}
		// rejectionReason 只在 Rejected 状态下保留
		if page.State != db.StateRejected {
			page.RejectionReason = nil
		}
		page.UpdatedAt = now
		return tx.Pages().Save(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("page_id", id).
		Str("from", string(prior)).
		Str("to", string(page.State)).
		Str("actor", actor.ID).
		Str("role", string(actor.Role)).
		Msg("page state changed")

	if prior == db.StateExpired || page.State == db.StateExpired {
		s.invalidatePreview(ctx, id)
	}
	return page, nil
}
