package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/blobstore"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
)

// Blobs back the desktop shell's persisted UI state. Payloads are opaque JSON
// documents keyed by name; the server never interprets them.

const _maxBlobSize = 1 << 20

func (app *application) handleLoadBlob(w http.ResponseWriter, r *http.Request) {
	key := blobKeyFromRequest(r)

	data, err := app.blobs.Load(key)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrBadKey):
			app.badRequest(w, r, err)
		case errors.Is(err, model.ErrNotFound):
			app.errorMessage(w, r, http.StatusNotFound, err.Error(), nil)
		default:
			app.serverError(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		app.reportServerError(r, err)
	}
}

func (app *application) handleSaveBlob(w http.ResponseWriter, r *http.Request) {
	key := blobKeyFromRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, _maxBlobSize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	if err := app.blobs.Save(key, data); err != nil {
		if errors.Is(err, blobstore.ErrBadKey) {
			app.badRequest(w, r, err)
			return
		}

		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"saved": key}); err != nil {
		app.serverError(w, r, err)
	}
}
