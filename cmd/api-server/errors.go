package main

import (
	"net/http"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/ctxstore"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/validator"
)

func (app *application) reportServerError(r *http.Request, err error) {
	var (
		method = r.Method
		url    = r.URL.String()
		tid, _ = ctxstore.From[string](r.Context(), _traceIDKey)
	)

	app.logger.Error(err.Error(), "method", method, "url", url, _traceIDKey.String(), tid)
}

func (app *application) errorMessage(w http.ResponseWriter, r *http.Request, status int, message string, headers http.Header) {
	err := response.JSONWithHeaders(w, status, response.JSONObject{"error": message}, headers)
	if err != nil {
		app.reportServerError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.reportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	app.errorMessage(w, r, http.StatusInternalServerError, message, nil)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource could not be found"
	app.errorMessage(w, r, http.StatusNotFound, message, nil)
}

func (app *application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := "The method is not supported for this resource"
	app.errorMessage(w, r, http.StatusMethodNotAllowed, message, nil)
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.errorMessage(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (app *application) failedValidation(w http.ResponseWriter, r *http.Request, v validator.Validator) {
	err := response.JSON(w, http.StatusUnprocessableEntity, v)
	if err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	app.errorMessage(w, r, http.StatusUnauthorized, message, nil)
}

func (app *application) forbidden(w http.ResponseWriter, r *http.Request, message string) {
	app.errorMessage(w, r, http.StatusForbidden, message, nil)
}

func (app *application) conflict(w http.ResponseWriter, r *http.Request, message string) {
	app.errorMessage(w, r, http.StatusConflict, message, nil)
}
