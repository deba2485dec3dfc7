package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	stage, err := ParseStage("separation")
	require.NoError(t, err)
	assert.Equal(t, StageSeparation, stage)

	stage, err = ParseStage("conference")
	require.NoError(t, err)
	assert.Equal(t, StageConference, stage)

	_, err = ParseStage("")
	assert.Error(t, err)

	_, err = ParseStage("packing")
	assert.Error(t, err)
}

func TestParseTimerState(t *testing.T) {
	for _, s := range []string{"queued", "active", "finished", "approved", "done"} {
		state, err := ParseTimerState(s)
		require.NoError(t, err)
		assert.Equal(t, TimerState(s), state)
	}

	_, err := ParseTimerState("paused")
	assert.Error(t, err)
}

func TestStageTimer(t *testing.T) {
	personID := ID(3)
	started := time.Now()
	finished := started.Add(time.Minute)

	n := Note{
		SeparatorID:          &personID,
		SeparationStartedAt:  &started,
		SeparationFinishedAt: &finished,
	}

	sep := n.StageTimer(StageSeparation)
	require.NotNil(t, sep.PersonID)
	assert.Equal(t, personID, *sep.PersonID)
	require.NotNil(t, sep.FinishedAt)

	conf := n.StageTimer(StageConference)
	assert.Nil(t, conf.PersonID)
	assert.Nil(t, conf.StartedAt)
	assert.Nil(t, conf.FinishedAt)
}
