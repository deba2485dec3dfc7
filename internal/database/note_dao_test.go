package database

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

func TestStageColumns(t *testing.T) {
	actor, started, finished := stageColumns(model.StageSeparation)
	assert.Equal(t, "separator_id", actor)
	assert.Equal(t, "separation_started_at", started)
	assert.Equal(t, "separation_finished_at", finished)

	actor, started, finished = stageColumns(model.StageConference)
	assert.Equal(t, "conference_person_id", actor)
	assert.Equal(t, "conference_started_at", started)
	assert.Equal(t, "conference_finished_at", finished)
}

func TestStageStateConds(t *testing.T) {
	t.Run("separation queued", func(t *testing.T) {
		conds, err := stageStateConds(model.StageSeparation, model.TimerQueued)
		require.NoError(t, err)

		sql, _, err := conds.ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "status <> ?")
		assert.Contains(t, sql, "separation_started_at IS NULL")
		assert.NotContains(t, sql, "approved")
	})

	t.Run("separation active", func(t *testing.T) {
		conds, err := stageStateConds(model.StageSeparation, model.TimerActive)
		require.NoError(t, err)

		sql, _, err := conds.ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "separation_started_at IS NOT NULL")
		assert.Contains(t, sql, "separation_finished_at IS NULL")
	})

	t.Run("separation finished excludes approved", func(t *testing.T) {
		conds, err := stageStateConds(model.StageSeparation, model.TimerFinished)
		require.NoError(t, err)

		sql, args, err := conds.ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "separation_finished_at IS NOT NULL")
		assert.Contains(t, sql, "approved = ?")
		assert.Contains(t, args, false)
	})

	t.Run("conference queued is gated on approval", func(t *testing.T) {
		conds, err := stageStateConds(model.StageConference, model.TimerQueued)
		require.NoError(t, err)

		sql, args, err := conds.ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "approved = ?")
		assert.Contains(t, args, true)
		assert.Contains(t, sql, "conference_started_at IS NULL")
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := stageStateConds(model.StageSeparation, model.TimerState("sleeping"))
		assert.Error(t, err)
	})
}

func TestReorderQueries(t *testing.T) {
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	numbers := []string{"1002", "1001"}

	t.Run("clear resets positions outside the sequence", func(t *testing.T) {
		sql, args, err := reorderClearQuery(builder, model.StageSeparation, numbers, now)
		require.NoError(t, err)

		assert.Contains(t, sql, "UPDATE notes")
		assert.Contains(t, sql, "queue_position = $")
		assert.Contains(t, args, nil)

		// Only queued notes of the stage, and only those omitted from the
		// submitted sequence while still holding a stale position.
		assert.Contains(t, sql, "separation_started_at IS NULL")
		assert.Contains(t, sql, "number NOT IN")
		assert.Contains(t, sql, "queue_position IS NOT NULL")
		assert.Contains(t, args, "1001")
		assert.Contains(t, args, "1002")
	})

	t.Run("position writes one slot", func(t *testing.T) {
		sql, args, err := reorderPositionQuery(builder, model.StageSeparation, "1002", 1, now)
		require.NoError(t, err)

		assert.Contains(t, sql, "UPDATE notes")
		assert.Contains(t, sql, "queue_position = $")
		assert.Contains(t, sql, "number = $")
		assert.Contains(t, sql, "separation_started_at IS NULL")
		assert.Contains(t, args, 1)
		assert.Contains(t, args, "1002")
	})

	t.Run("conference queue stays approval gated", func(t *testing.T) {
		sql, _, err := reorderClearQuery(builder, model.StageConference, numbers, now)
		require.NoError(t, err)

		assert.Contains(t, sql, "approved = $")
		assert.Contains(t, sql, "conference_started_at IS NULL")
	})
}
