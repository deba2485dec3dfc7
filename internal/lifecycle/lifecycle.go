// Package lifecycle holds the queue/timer transition rules for a note.
// Both stages (separation, conference) share the same queued -> active ->
// finished progression; the separation stage additionally passes through an
// approval gate before the note becomes visible in the conference queue.
//
// The functions here are pure: they decide and apply transitions on in-memory
// notes, while the database layer enforces the same guards with conditional
// updates so that concurrent actors cannot both win.
package lifecycle

import (
	"errors"
	"time"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

var (
	ErrCancelled      = errors.New("note is cancelled")
	ErrNotQueued      = errors.New("note is not queued")
	ErrNotActive      = errors.New("note has no running timer")
	ErrNotFinished    = errors.New("note is not finished")
	ErrNotApproved    = errors.New("note is not approved")
	ErrAlreadyClaimed = errors.New("note already claimed")
	ErrOnBreak        = errors.New("person is on break")
	ErrActiveTimer    = errors.New("person already holds an active timer")
)

// State reports the note's sub-state within the given stage. ok is false when
// the note does not participate in that stage's queue at all: cancelled notes,
// and conference state before separation has been approved.
func State(n model.Note, stage model.Stage) (model.TimerState, bool) {
	if n.Status == model.StatusCancelled {
		return "", false
	}

	t := n.StageTimer(stage)

	if stage == model.StageConference {
		if !n.Approved {
			return "", false
		}
		switch {
		case t.StartedAt == nil:
			return model.TimerQueued, true
		case t.FinishedAt == nil:
			return model.TimerActive, true
		default:
			return model.TimerDone, true
		}
	}

	switch {
	case t.StartedAt == nil:
		return model.TimerQueued, true
	case t.FinishedAt == nil:
		return model.TimerActive, true
	case !n.Approved:
		return model.TimerFinished, true
	default:
		return model.TimerApproved, true
	}
}

// CanClaim checks the guards for the queued -> active transition: the note
// must be queued for the stage, the person must not be on break and must not
// hold another active timer in the same stage.
func CanClaim(n model.Note, stage model.Stage, p model.Person, active []model.Note) error {
	if n.Status == model.StatusCancelled {
		return ErrCancelled
	}
	if stage == model.StageConference && !n.Approved {
		return ErrNotApproved
	}

	state, ok := State(n, stage)
	if !ok || state != model.TimerQueued {
		if state == model.TimerActive {
			return ErrAlreadyClaimed
		}
		return ErrNotQueued
	}

	if p.OnBreak {
		return ErrOnBreak
	}

	for _, other := range active {
		if other.ID == n.ID {
			continue
		}
		t := other.StageTimer(stage)
		if t.PersonID != nil && *t.PersonID == p.ID && t.StartedAt != nil && t.FinishedAt == nil {
			return ErrActiveTimer
		}
	}

	return nil
}

// Claim applies the queued -> active transition.
func Claim(n *model.Note, stage model.Stage, p model.Person, active []model.Note, now time.Time) error {
	if err := CanClaim(*n, stage, p, active); err != nil {
		return err
	}

	if stage == model.StageConference {
		n.ConferencePersonID = &p.ID
		n.ConferenceStartedAt = &now
		n.Status = model.StatusConferring
	} else {
		n.SeparatorID = &p.ID
		n.SeparationStartedAt = &now
		n.Status = model.StatusSeparating
	}
	return nil
}

// Stop applies the active -> finished transition. The only guard is that the
// stage's timer is actually running.
func Stop(n *model.Note, stage model.Stage, now time.Time) error {
	state, ok := State(*n, stage)
	if !ok || state != model.TimerActive {
		return ErrNotActive
	}

	if stage == model.StageConference {
		n.ConferenceFinishedAt = &now
		n.Status = model.StatusConferred
	} else {
		n.SeparationFinishedAt = &now
		n.Status = model.StatusSeparated
	}
	return nil
}

// Approve applies the finished -> approved transition on the separation
// stage. Approving an already approved note is a no-op, so repeated approvals
// leave the state unchanged. Approval is blocked once conference has started,
// which keeps a late re-approval from regressing the status.
func Approve(n *model.Note) error {
	if n.Status == model.StatusCancelled {
		return ErrCancelled
	}
	if n.Approved {
		return nil
	}
	if n.SeparationFinishedAt == nil {
		return ErrNotFinished
	}

	n.Approved = true
	n.Status = model.StatusApproved
	return nil
}

// Cancel marks a queued note cancelled, removing it from every queue. Only
// notes waiting in the separation or conference queue may be cancelled; a
// running or finished-but-unapproved timer keeps its note alive. Cancelled is
// terminal.
func Cancel(n *model.Note) error {
	if n.Status == model.StatusCancelled {
		return ErrCancelled
	}

	sepState, _ := State(*n, model.StageSeparation)
	confState, confOK := State(*n, model.StageConference)

	queued := sepState == model.TimerQueued || (confOK && confState == model.TimerQueued)
	if !queued {
		return ErrNotQueued
	}

	n.Status = model.StatusCancelled
	return nil
}

// Duration is finished minus started, floored to whole seconds.
func Duration(started, finished time.Time) int {
	return int(finished.Sub(started) / time.Second)
}

// Record derives the time record for a stage, if its started/finished pair is
// complete.
func Record(n model.Note, stage model.Stage) (model.TimeRecord, bool) {
	t := n.StageTimer(stage)
	if t.PersonID == nil || t.StartedAt == nil || t.FinishedAt == nil {
		return model.TimeRecord{}, false
	}

	return model.TimeRecord{
		NoteID:      n.ID,
		Number:      n.Number,
		Stage:       stage,
		PersonID:    *t.PersonID,
		ItemCount:   n.ItemCount,
		VolumeCount: n.VolumeCount,
		StartedAt:   *t.StartedAt,
		FinishedAt:  *t.FinishedAt,
		Duration:    Duration(*t.StartedAt, *t.FinishedAt),
	}, true
}
