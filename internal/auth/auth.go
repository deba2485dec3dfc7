// Package auth verifies submitted credentials against stored person records.
// Passwords are stored as salted bcrypt hashes and compared in constant time;
// the comparison never reveals whether the username or the password was the
// wrong half.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

var (
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrNotApprover    = errors.New("approver role required")
)

// PersonSource resolves a person record by username.
type PersonSource interface {
	GetByUsername(ctx context.Context, username string) (model.Person, error)
}

type Verifier struct {
	Logger *slog.Logger
	People PersonSource
}

func NewVerifier(logger *slog.Logger, people PersonSource) *Verifier {
	return &Verifier{
		Logger: logger.With("module", "auth"),
		People: people,
	}
}

// Verify looks the person up by username and compares the submitted password
// against the stored hash. A missing person and a wrong password both come
// back as ErrBadCredentials.
func (v *Verifier) Verify(ctx context.Context, username, password string) (model.Person, error) {
	person, err := v.People.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			v.Logger.Debug("verify failed", "username", username, "reason", "unknown username")
			return model.Person{}, ErrBadCredentials
		}
		return model.Person{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			v.Logger.Debug("verify failed", "username", username, "reason", "password mismatch")
			return model.Person{}, ErrBadCredentials
		}
		return model.Person{}, err
	}

	return person, nil
}

// VerifyApprover additionally requires the approver role, which gates
// approvals, cancellations and queue reordering.
func (v *Verifier) VerifyApprover(ctx context.Context, username, password string) (model.Person, error) {
	person, err := v.Verify(ctx, username, password)
	if err != nil {
		return model.Person{}, err
	}

	if !person.IsApprover() {
		v.Logger.Debug("verify failed", "username", username, "reason", "not an approver")
		return model.Person{}, ErrNotApprover
	}

	return person, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
