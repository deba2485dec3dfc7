package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

type fakePersonSource struct {
	people map[string]model.Person
}

func (s *fakePersonSource) GetByUsername(_ context.Context, username string) (model.Person, error) {
	person, ok := s.people[username]
	if !ok {
		return model.Person{}, model.NewError("person", model.ErrNotFound)
	}
	return person, nil
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	approverHash, err := HashPassword("staple")
	require.NoError(t, err)

	source := &fakePersonSource{people: map[string]model.Person{
		"ana":    {ID: 1, Name: "Ana", Username: "ana", PasswordHash: hash, Role: model.RoleSeparator},
		"carlos": {ID: 2, Name: "Carlos", Username: "carlos", PasswordHash: approverHash, Role: model.RoleApprover},
	}}

	return NewVerifier(slog.New(slog.NewTextHandler(io.Discard, nil)), source)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	verifier := newTestVerifier(t)

	t.Run("valid credentials", func(t *testing.T) {
		person, err := verifier.Verify(ctx, "ana", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, model.ID(1), person.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "ana", "wrong")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "nobody", "correct-horse")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestVerifyApprover(t *testing.T) {
	ctx := context.Background()
	verifier := newTestVerifier(t)

	t.Run("approver passes", func(t *testing.T) {
		person, err := verifier.VerifyApprover(ctx, "carlos", "staple")
		require.NoError(t, err)
		assert.True(t, person.IsApprover())
	})

	t.Run("separator refused", func(t *testing.T) {
		_, err := verifier.VerifyApprover(ctx, "ana", "correct-horse")
		assert.ErrorIs(t, err, ErrNotApprover)
	})

	t.Run("bad password refused before role check", func(t *testing.T) {
		_, err := verifier.VerifyApprover(ctx, "carlos", "wrong")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, "secret", hash)

	other, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "each hash carries its own salt")
}
