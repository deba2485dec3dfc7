package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/auth"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/lifecycle"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/metrics"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/request"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/validator"
)

func (app *application) handleListTimers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	stage, err := stageQueryParam(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	state, err := timerStateQueryParam(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	opts := database.FindOptions{
		Limit:  defaultIntQueryParams(r, "limit", 100),
		Offset: defaultIntQueryParams(r, "offset", 0),
	}

	dao := database.NewNoteDAO(logger, app.db)

	notes, err := dao.FindByStageState(ctx, stage, state, opts)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	out := response.JSONObject{"stage": stage, "state": state, "notes": notes}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

type requestClaimTimer struct {
	Stage    string `json:"stage"`
	Number   string `json:"number"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleClaimTimer moves a queued note to active for the authenticated
// person. The claim is a conditional update, so of two concurrent claims on
// the same note exactly one wins; the loser gets a conflict.
func (app *application) handleClaimTimer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestClaimTimer
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	v.CheckField(validator.NotBlank(input.Number), "number", "cannot be blank")
	v.CheckField(validator.NotBlank(input.Username), "username", "cannot be blank")
	v.CheckField(validator.NotBlank(input.Password), "password", "cannot be blank")
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	stage := model.StageSeparation
	if input.Stage != "" {
		var err error
		stage, err = model.ParseStage(input.Stage)
		if err != nil {
			app.badRequest(w, r, err)
			return
		}
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

	dao := database.NewNoteDAO(logger, app.db)

	note, err := dao.Claim(ctx, input.Number, stage, person.ID, time.Now())
	if err != nil {
		app.writeLifecycleError(w, r, err)
		return
	}

	metrics.TimerStarts.WithLabelValues(string(stage)).Inc()
	app.publishPanel(r)

	out := response.JSONObject{"note": note, "person": person}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

type requestStopTimer struct {
	Stage string `json:"stage"`
}

func (app *application) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	number := noteNumberFromRequest(r)

	// The body is optional; an absent stage means separation.
	var input requestStopTimer
	if r.ContentLength != 0 {
		if err := request.DecodeJSONStrict(w, r, &input); err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	stage := model.StageSeparation
	if input.Stage != "" {
		var err error
		stage, err = model.ParseStage(input.Stage)
		if err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	dao := database.NewNoteDAO(logger, app.db)

	note, err := dao.Stop(ctx, number, stage, time.Now())
	if err != nil {
		app.writeLifecycleError(w, r, err)
		return
	}

	metrics.TimerStops.WithLabelValues(string(stage)).Inc()
	app.publishPanel(r)

	out := response.JSONObject{"note": note}
	if record, ok := lifecycle.Record(note, stage); ok {
		out["record"] = record
	}

	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

type requestApproveNote struct {
	Username string `json:"username"`
	Password string `json:"password"`

	Products []requestAmendProduct `json:"products"`
}

type requestAmendProduct struct {
	ID     model.ID `json:"id"`
	Amount int      `json:"amount"`
}

// handleApproveNote records approval of a finished separation. Approver
// credentials are required; amended product quantities, when present, are
// written in the same transaction as the approval.
func (app *application) handleApproveNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	number := noteNumberFromRequest(r)

	var input requestApproveNote
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	for _, product := range input.Products {
		v.CheckField(product.Amount >= 0, "products", "amount cannot be negative")
		v.CheckField(product.ID != 0, "products", "product id is required")
	}
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	if _, ok := app.verifyApprover(w, r, input.Username, input.Password); !ok {
		return
	}

	amendments := make([]database.AmendProductDTO, 0, len(input.Products))
	for _, product := range input.Products {
		amendments = append(amendments, database.AmendProductDTO{ID: product.ID, Amount: product.Amount})
	}

	dao := database.NewNoteDAO(logger, app.db)

	note, err := dao.Approve(ctx, number, amendments, time.Now())
	if err != nil {
		app.writeLifecycleError(w, r, err)
		return
	}

	metrics.Approvals.Inc()
	app.publishPanel(r)

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"note": note}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestCancelNotes struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Numbers  []string `json:"numbers"`
}

func (app *application) handleCancelNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestCancelNotes
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	v.CheckField(len(input.Numbers) > 0, "numbers", "cannot be empty")
	v.CheckField(validator.NoDuplicates(input.Numbers), "numbers", "cannot contain duplicates")
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	if _, ok := app.verifyApprover(w, r, input.Username, input.Password); !ok {
		return
	}

	dao := database.NewNoteDAO(logger, app.db)

	cancelled, err := dao.Cancel(ctx, input.Numbers, time.Now())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	metrics.Cancellations.Add(float64(len(cancelled)))
	app.publishPanel(r)

	out := response.JSONObject{"cancelled": cancelled}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

type requestReorderQueue struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Stage    string   `json:"stage"`
	Numbers  []string `json:"numbers"`
}

func (app *application) handleReorderQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestReorderQueue
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	v.CheckField(len(input.Numbers) > 0, "numbers", "cannot be empty")
	v.CheckField(validator.NoDuplicates(input.Numbers), "numbers", "cannot contain duplicates")
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	stage := model.StageSeparation
	if input.Stage != "" {
		var err error
		stage, err = model.ParseStage(input.Stage)
		if err != nil {
			app.badRequest(w, r, err)
			return
		}
	}

	if _, ok := app.verifyApprover(w, r, input.Username, input.Password); !ok {
		return
	}

	dao := database.NewNoteDAO(logger, app.db)

	if err := dao.Reorder(ctx, stage, input.Numbers, time.Now()); err != nil {
		app.serverError(w, r, err)
		return
	}

	queue, err := dao.FindByStageState(ctx, stage, model.TimerQueued, database.DefaultFindOptions())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	out := response.JSONObject{"stage": stage, "queue": queue}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

// writeLifecycleError maps state machine refusals onto HTTP statuses.
func (app *application) writeLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrAlreadyClaimed),
		errors.Is(err, lifecycle.ErrActiveTimer),
		errors.Is(err, lifecycle.ErrOnBreak),
		errors.Is(err, lifecycle.ErrNotQueued),
		errors.Is(err, lifecycle.ErrNotActive),
		errors.Is(err, lifecycle.ErrNotFinished),
		errors.Is(err, lifecycle.ErrNotApproved),
		errors.Is(err, lifecycle.ErrCancelled):
		app.conflict(w, r, err.Error())
	default:
		app.serverError(w, r, err)
	}
}
