package main

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/tomasen/realip"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/ctxstore"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
)

const _traceIDKey = ctxstore.Key("traceId")

const _intakeSecretHeader = "X-Api-Secret"

func (app *application) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := genTraceID()
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.MustFrom[string](r.Context(), _traceIDKey)
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.serverLogger().Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (app *application) CORS(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// requireIntakeSecret gates the machine-to-machine intake endpoints behind
// the static shared secret, compared in constant time. An unset secret
// refuses everything.
func (app *application) requireIntakeSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := app.config.intake.secret
		given := r.Header.Get(_intakeSecretHeader)

		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			app.unauthorized(w, r, "invalid api secret")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
