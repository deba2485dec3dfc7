package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/lifecycle"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/report"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/response"
)

const _xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (app *application) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	logger := app.requestLogger(r)

	stage, window, personID, err := reportQueryParams(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	people, records, err := app.collectRecords(r, stage)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	records = report.Filter(records, window, time.Now(), personID)
	summary := report.Summarize(people, records)

	logger.Debug("report summary", "stage", stage, "window", window, "records", len(records))

	out := response.JSONObject{"stage": stage, "window": window, "summary": summary}
	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

// handleReportExport streams an XLSX workbook. The kind query parameter picks
// between the per-person summary and the full timer detail listing.
func (app *application) handleReportExport(w http.ResponseWriter, r *http.Request) {
	stage, window, personID, err := reportQueryParams(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "summary"
	}
	if kind != "summary" && kind != "details" {
		app.badRequest(w, r, fmt.Errorf("unknown report kind %q", kind))
		return
	}

	people, records, err := app.collectRecords(r, stage)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	records = report.Filter(records, window, time.Now(), personID)

	filename := fmt.Sprintf("report-%s-%s-%s.xlsx", stage, window, time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", _xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if kind == "details" {
		err = report.WriteDetailsXLSX(w, report.Details(people, records))
	} else {
		err = report.WriteSummaryXLSX(w, report.Summarize(people, records))
	}
	if err != nil {
		app.reportServerError(r, err)
	}
}

// collectRecords loads every finished timer for the stage along with the
// current people list, converting notes to flat time records.
func (app *application) collectRecords(r *http.Request, stage model.Stage) ([]model.Person, []model.TimeRecord, error) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	people, err := database.NewPersonDAO(logger, app.db).Find(ctx, database.FindOptions{Limit: 1000})
	if err != nil {
		return nil, nil, err
	}

	notes, err := database.NewNoteDAO(logger, app.db).FindRecords(ctx, stage, database.FindOptions{Limit: 10000})
	if err != nil {
		return nil, nil, err
	}

	records := make([]model.TimeRecord, 0, len(notes))
	for _, note := range notes {
		if record, ok := lifecycle.Record(note, stage); ok {
			records = append(records, record)
		}
	}

	return people, records, nil
}

func reportQueryParams(r *http.Request) (model.Stage, report.Window, *model.ID, error) {
	stage, err := stageQueryParam(r)
	if err != nil {
		return "", "", nil, err
	}

	window := report.WindowAll
	if s := r.URL.Query().Get("window"); s != "" {
		window, err = report.ParseWindow(s)
		if err != nil {
			return "", "", nil, err
		}
	}

	return stage, window, optionalIDQueryParams(r, "personId"), nil
}
