package main

import (
	"errors"
	"net/http"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/auth"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/request"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/validator"
)

type requestLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (app *application) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestLogin
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	v.CheckField(validator.NotBlank(input.Username), "username", "cannot be blank")
	v.CheckField(validator.NotBlank(input.Password), "password", "cannot be blank")
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	verifier := auth.NewVerifier(logger, database.NewPersonDAO(logger, app.db))

	person, err := verifier.Verify(ctx, input.Username, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			app.unauthorized(w, r, err.Error())
			return
		}

		app.serverError(w, r, err)
		return
	}

	out := response.JSONObject{"success": true, "person": person}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

// verifyApprover authenticates the embedded credentials and requires the
// approver role, writing the refusal itself. The bool reports success.
func (app *application) verifyApprover(w http.ResponseWriter, r *http.Request, username, password string) (model.Person, bool) {
	logger := app.requestLogger(r)

	verifier := auth.NewVerifier(logger, database.NewPersonDAO(logger, app.db))

	person, err := verifier.VerifyApprover(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadCredentials):
			app.unauthorized(w, r, err.Error())
		case errors.Is(err, auth.ErrNotApprover):
			app.forbidden(w, r, err.Error())
		default:
			app.serverError(w, r, err)
		}
		return model.Person{}, false
	}

	return person, true
}
