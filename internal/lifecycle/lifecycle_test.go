package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

func newQueuedNote(id model.ID, number string) model.Note {
	return model.Note{
		ID:     id,
		Number: number,
		Status: model.StatusPending,
	}
}

func newPerson(id model.ID) model.Person {
	return model.Person{ID: id, Name: "Person", Role: model.RoleSeparator}
}

func TestState(t *testing.T) {
	now := time.Now()
	later := now.Add(3 * time.Minute)
	personID := model.ID(1)

	t.Run("separation progression", func(t *testing.T) {
		n := newQueuedNote(1, "1001")

		state, ok := State(n, model.StageSeparation)
		require.True(t, ok)
		assert.Equal(t, model.TimerQueued, state)

		n.SeparatorID = &personID
		n.SeparationStartedAt = &now

		state, ok = State(n, model.StageSeparation)
		require.True(t, ok)
		assert.Equal(t, model.TimerActive, state)

		n.SeparationFinishedAt = &later

		state, ok = State(n, model.StageSeparation)
		require.True(t, ok)
		assert.Equal(t, model.TimerFinished, state)

		n.Approved = true

		state, ok = State(n, model.StageSeparation)
		require.True(t, ok)
		assert.Equal(t, model.TimerApproved, state)
	})

	t.Run("conference hidden until approved", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		n.SeparatorID = &personID
		n.SeparationStartedAt = &now
		n.SeparationFinishedAt = &later

		_, ok := State(n, model.StageConference)
		assert.False(t, ok)

		n.Approved = true

		state, ok := State(n, model.StageConference)
		require.True(t, ok)
		assert.Equal(t, model.TimerQueued, state)
	})

	t.Run("cancelled is out of every queue", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		n.Status = model.StatusCancelled

		_, ok := State(n, model.StageSeparation)
		assert.False(t, ok)

		_, ok = State(n, model.StageConference)
		assert.False(t, ok)
	})
}

func TestClaim(t *testing.T) {
	now := time.Now()

	t.Run("queued note is claimable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		p := newPerson(7)

		require.NoError(t, Claim(&n, model.StageSeparation, p, nil, now))

		assert.Equal(t, model.StatusSeparating, n.Status)
		require.NotNil(t, n.SeparatorID)
		assert.Equal(t, p.ID, *n.SeparatorID)
		require.NotNil(t, n.SeparationStartedAt)
		assert.True(t, n.SeparationStartedAt.Equal(now))
	})

	t.Run("already claimed", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		p := newPerson(7)
		require.NoError(t, Claim(&n, model.StageSeparation, p, nil, now))

		err := Claim(&n, model.StageSeparation, newPerson(8), nil, now)
		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	})

	t.Run("person on break cannot claim", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		p := newPerson(7)
		p.OnBreak = true

		err := Claim(&n, model.StageSeparation, p, nil, now)
		assert.ErrorIs(t, err, ErrOnBreak)
	})

	t.Run("person with a running timer cannot claim another", func(t *testing.T) {
		p := newPerson(7)

		other := newQueuedNote(2, "1002")
		require.NoError(t, Claim(&other, model.StageSeparation, p, nil, now))

		n := newQueuedNote(1, "1001")
		err := Claim(&n, model.StageSeparation, p, []model.Note{other}, now)
		assert.ErrorIs(t, err, ErrActiveTimer)
	})

	t.Run("conference requires approval", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		p := newPerson(7)

		err := Claim(&n, model.StageConference, p, nil, now)
		assert.ErrorIs(t, err, ErrNotApproved)
	})

	t.Run("cancelled note cannot be claimed", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		n.Status = model.StatusCancelled

		err := Claim(&n, model.StageSeparation, newPerson(7), nil, now)
		assert.ErrorIs(t, err, ErrCancelled)
	})
}

func TestStop(t *testing.T) {
	now := time.Now()
	later := now.Add(90 * time.Second)

	t.Run("stops a running separation", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))

		require.NoError(t, Stop(&n, model.StageSeparation, later))

		assert.Equal(t, model.StatusSeparated, n.Status)
		require.NotNil(t, n.SeparationFinishedAt)
		assert.True(t, n.SeparationFinishedAt.Equal(later))
	})

	t.Run("queued note has nothing to stop", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		assert.ErrorIs(t, Stop(&n, model.StageSeparation, later), ErrNotActive)
	})

	t.Run("double stop", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))
		require.NoError(t, Stop(&n, model.StageSeparation, later))

		assert.ErrorIs(t, Stop(&n, model.StageSeparation, later), ErrNotActive)
	})
}

func TestApprove(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)

	t.Run("finished separation is approvable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))
		require.NoError(t, Stop(&n, model.StageSeparation, later))

		require.NoError(t, Approve(&n))

		assert.True(t, n.Approved)
		assert.Equal(t, model.StatusApproved, n.Status)
	})

	t.Run("repeat approval is a no-op", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))
		require.NoError(t, Stop(&n, model.StageSeparation, later))
		require.NoError(t, Approve(&n))

		require.NoError(t, Claim(&n, model.StageConference, newPerson(8), nil, later))
		statusBefore := n.Status

		require.NoError(t, Approve(&n))
		assert.Equal(t, statusBefore, n.Status)
	})

	t.Run("unfinished separation is not approvable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))

		assert.ErrorIs(t, Approve(&n), ErrNotFinished)
	})

	t.Run("cancelled note is not approvable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		n.Status = model.StatusCancelled

		assert.ErrorIs(t, Approve(&n), ErrCancelled)
	})
}

func TestCancel(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)

	t.Run("queued note is cancellable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")

		require.NoError(t, Cancel(&n))
		assert.Equal(t, model.StatusCancelled, n.Status)
	})

	t.Run("approved note waits in the conference queue and is cancellable", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))
		require.NoError(t, Stop(&n, model.StageSeparation, later))
		require.NoError(t, Approve(&n))

		require.NoError(t, Cancel(&n))
		assert.Equal(t, model.StatusCancelled, n.Status)
	})

	t.Run("running timer blocks cancellation", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))

		assert.ErrorIs(t, Cancel(&n), ErrNotQueued)
	})

	t.Run("finished but unapproved blocks cancellation", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))
		require.NoError(t, Stop(&n, model.StageSeparation, later))

		assert.ErrorIs(t, Cancel(&n), ErrNotQueued)
	})

	t.Run("cancel is terminal", func(t *testing.T) {
		n := newQueuedNote(1, "1001")
		require.NoError(t, Cancel(&n))

		assert.ErrorIs(t, Cancel(&n), ErrCancelled)
	})
}

func TestDuration(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 90, Duration(start, start.Add(90*time.Second)))
	assert.Equal(t, 1, Duration(start, start.Add(1900*time.Millisecond)))
	assert.Equal(t, 0, Duration(start, start.Add(999*time.Millisecond)))
}

func TestRecord(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	later := now.Add(125 * time.Second)

	n := newQueuedNote(4, "1001")
	n.ItemCount = 12
	n.VolumeCount = 3
	require.NoError(t, Claim(&n, model.StageSeparation, newPerson(7), nil, now))

	_, ok := Record(n, model.StageSeparation)
	assert.False(t, ok, "running timer has no record yet")

	require.NoError(t, Stop(&n, model.StageSeparation, later))

	record, ok := Record(n, model.StageSeparation)
	require.True(t, ok)
	assert.Equal(t, model.ID(4), record.NoteID)
	assert.Equal(t, "1001", record.Number)
	assert.Equal(t, model.StageSeparation, record.Stage)
	assert.Equal(t, model.ID(7), record.PersonID)
	assert.Equal(t, 12, record.ItemCount)
	assert.Equal(t, 3, record.VolumeCount)
	assert.Equal(t, 125, record.Duration)

	_, ok = Record(n, model.StageConference)
	assert.False(t, ok, "conference never ran")
}

func TestFullScenario(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	n := newQueuedNote(1, "2001")
	separator := newPerson(1)
	conferent := newPerson(2)
	conferent.Role = model.RoleConferent

	require.NoError(t, Claim(&n, model.StageSeparation, separator, nil, now))
	require.NoError(t, Stop(&n, model.StageSeparation, now.Add(5*time.Minute)))
	require.NoError(t, Approve(&n))
	require.NoError(t, Claim(&n, model.StageConference, conferent, nil, now.Add(6*time.Minute)))
	require.NoError(t, Stop(&n, model.StageConference, now.Add(9*time.Minute)))

	assert.Equal(t, model.StatusConferred, n.Status)

	sep, ok := Record(n, model.StageSeparation)
	require.True(t, ok)
	assert.Equal(t, 300, sep.Duration)

	conf, ok := Record(n, model.StageConference)
	require.True(t, ok)
	assert.Equal(t, 180, conf.Duration)

	state, ok := State(n, model.StageConference)
	require.True(t, ok)
	assert.Equal(t, model.TimerDone, state)
}
