package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

func personIDFromRequest(r *http.Request) (model.ID, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "personId"))
	return model.ID(id), err
}

func noteNumberFromRequest(r *http.Request) string {
	return chi.URLParam(r, "number")
}

func blobKeyFromRequest(r *http.Request) string {
	return chi.URLParam(r, "key")
}

func stageQueryParam(r *http.Request) (model.Stage, error) {
	val := r.URL.Query().Get("stage")
	if val == "" {
		return model.StageSeparation, nil
	}
	return model.ParseStage(val)
}

func timerStateQueryParam(r *http.Request) (model.TimerState, error) {
	val := r.URL.Query().Get("state")
	if val == "" {
		return model.TimerQueued, nil
	}
	return model.ParseTimerState(val)
}

func defaultIntQueryParams(r *http.Request, key string, def int) int {
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return def
	}
	return i
}

func optionalIDQueryParams(r *http.Request, key string) *model.ID {
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok {
		return nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil || intVal < 0 {
		return nil
	}
	ref := new(model.ID)
	*ref = model.ID(intVal)
	return ref
}
