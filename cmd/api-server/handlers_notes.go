package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/request"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/validator"
)

type requestCreateNote struct {
	Number      string     `json:"number"`
	ItemCount   int        `json:"itemCount"`
	VolumeCount int        `json:"volumeCount"`
	Destination string     `json:"destination"`
	OrderDate   *time.Time `json:"orderDate"`

	Products []requestCreateProduct `json:"products"`
}

type requestCreateProduct struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Amount      int    `json:"amount"`
	Location    string `json:"location"`
}

func (app *application) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	var input requestCreateNote
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateCreateNote(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	products := make([]database.InsertProductDTO, 0, len(input.Products))
	for _, product := range input.Products {
		products = append(products, database.InsertProductDTO{
			Code:        product.Code,
			Description: product.Description,
			Amount:      product.Amount,
			Location:    product.Location,
		})
	}

	dao := database.NewNoteDAO(logger, app.db)

	noteID, err := dao.Insert(ctx, database.InsertNoteDTO{
		Number:      input.Number,
		ItemCount:   input.ItemCount,
		VolumeCount: input.VolumeCount,
		Destination: input.Destination,
		OrderDate:   orderDate,
	}, products)
	if err != nil {
		if errors.Is(err, model.ErrExists) {
			app.errorMessage(w, r, http.StatusConflict, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	note, err := dao.Get(ctx, noteID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.publishPanel(r)

	if err := response.JSON(w, http.StatusCreated, response.JSONObject{"note": note}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestUpdateNote struct {
	ItemCount   *int       `json:"itemCount"`
	VolumeCount *int       `json:"volumeCount"`
	Destination *string    `json:"destination"`
	OrderDate   *time.Time `json:"orderDate"`
}

func (app *application) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	number := noteNumberFromRequest(r)

	var input requestUpdateNote
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateUpdateNote(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	dao := database.NewNoteDAO(logger, app.db)

	err := dao.UpdateByNumber(ctx, number, database.UpdateNoteDTO{
		ItemCount:   input.ItemCount,
		VolumeCount: input.VolumeCount,
		Destination: input.Destination,
		OrderDate:   input.OrderDate,
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	note, err := dao.GetOpenByNumber(ctx, number)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"note": note}); err != nil {
		app.serverError(w, r, err)
	}
}

// handleCheckNote reports whether an open note with the number exists.
// Absence is a normal answer here, not an error.
func (app *application) handleCheckNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	number := r.URL.Query().Get("number")
	if number == "" {
		app.badRequest(w, r, errors.New("note number is required"))
		return
	}

	dao := database.NewNoteDAO(logger, app.db)

	exists, err := dao.Exists(ctx, number)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"exists": exists}); err != nil {
		app.serverError(w, r, err)
	}
}

func (app *application) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	number := noteNumberFromRequest(r)

	notes := database.NewNoteDAO(logger, app.db)

	note, err := notes.GetOpenByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	products, err := database.NewProductDAO(logger, app.db).FindByNoteNumber(ctx, number)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	out := response.JSONObject{"note": note, "products": products}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}
