package main

import (
	"log/slog"
	"net/http"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/ctxstore"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
)

func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK"}); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) requestLogger(r *http.Request) *slog.Logger {
	return app.logger.With(
		_traceIDKey.String(), ctxstore.MustFrom[string](r.Context(), _traceIDKey),
	)
}
