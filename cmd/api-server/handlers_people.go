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

func (app *application) handleListPeople(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	opts := database.FindOptions{
		Limit:  defaultIntQueryParams(r, "limit", 100),
		Offset: defaultIntQueryParams(r, "offset", 0),
	}

	dao := database.NewPersonDAO(logger, app.db)

	people, err := dao.Find(ctx, opts)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"people": people}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestAddPerson struct {
	Name     string     `json:"name"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

func (app *application) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestAddPerson
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateAddPerson(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if input.Role == 0 {
		input.Role = model.RoleSeparator
	}

	dao := database.NewPersonDAO(logger, app.db)

	personID, err := dao.Insert(ctx, database.InsertPersonDTO{
		Name:         input.Name,
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
	})
	if err != nil {
		if errors.Is(err, model.ErrExists) {
			app.errorMessage(w, r, http.StatusConflict, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	person, err := dao.Get(ctx, personID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusCreated, response.JSONObject{"person": person}); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	personID, err := personIDFromRequest(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	dao := database.NewPersonDAO(logger, app.db)

	if _, err := dao.Get(ctx, personID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	if err := dao.Delete(ctx, personID); err != nil {
		app.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type requestSetBreak struct {
	OnBreak bool `json:"onBreak"`
}

func (app *application) handleSetBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	personID, err := personIDFromRequest(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	var input requestSetBreak
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	dao := database.NewPersonDAO(logger, app.db)

	person, err := dao.SetBreak(ctx, personID, input.OnBreak)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
		case errors.Is(err, model.ErrConflict):
			app.conflict(w, r, "another person is already on break")
		default:
			app.serverError(w, r, err)
		}
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"person": person}); err != nil {
		app.serverError(w, r, err)
	}
}
