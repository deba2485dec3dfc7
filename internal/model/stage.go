package model

import (
	"fmt"
	"time"
)

// Stage identifies which of the two timestamp/actor column sets on a note
// an operation targets.
type Stage string

const (
	StageSeparation Stage = "separation"
	StageConference Stage = "conference"
)

func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageSeparation:
		return StageSeparation, nil
	case StageConference:
		return StageConference, nil
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// TimerState is the queue sub-state of a note within a single stage.
type TimerState string

const (
	TimerQueued   TimerState = "queued"
	TimerActive   TimerState = "active"
	TimerFinished TimerState = "finished"
	TimerApproved TimerState = "approved"
	TimerDone     TimerState = "done"
)

func ParseTimerState(s string) (TimerState, error) {
	switch TimerState(s) {
	case TimerQueued, TimerActive, TimerFinished, TimerApproved, TimerDone:
		return TimerState(s), nil
	}
	return "", fmt.Errorf("unknown timer state %q", s)
}

// StageTimer is the actor/timestamp slice of a note for one stage.
type StageTimer struct {
	PersonID   *ID
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (n Note) StageTimer(stage Stage) StageTimer {
	if stage == StageConference {
		return StageTimer{
			PersonID:   n.ConferencePersonID,
			StartedAt:  n.ConferenceStartedAt,
			FinishedAt: n.ConferenceFinishedAt,
		}
	}
	return StageTimer{
		PersonID:   n.SeparatorID,
		StartedAt:  n.SeparationStartedAt,
		FinishedAt: n.SeparationFinishedAt,
	}
}
