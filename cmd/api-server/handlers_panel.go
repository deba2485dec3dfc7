package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/database"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/metrics"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/panel"
)

func (app *application) handlePanelSocket(w http.ResponseWriter, r *http.Request) {
	app.hub.Handle(w, r)
	metrics.PanelClients.Set(float64(app.hub.ClientCount()))
}

// publishPanel pushes the current set of running timers to every connected
// panel. It runs in the background so handler latency is unaffected; the
// snapshot is rebuilt from storage rather than patched incrementally, which
// keeps panels correct even if an update is dropped.
func (app *application) publishPanel(r *http.Request) {
	logger := app.requestLogger(r)

	app.backgroundTask(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		timers, err := app.collectActiveTimers(ctx, logger)
		if err != nil {
			return err
		}

		app.hub.Publish(timers, time.Now())
		metrics.PanelClients.Set(float64(app.hub.ClientCount()))

		return nil
	})
}

func (app *application) collectActiveTimers(ctx context.Context, logger *slog.Logger) ([]panel.ActiveTimer, error) {
	noteDAO := database.NewNoteDAO(logger, app.db)

	people, err := database.NewPersonDAO(logger, app.db).Find(ctx, database.FindOptions{Limit: 1000})
	if err != nil {
		return nil, err
	}

	names := make(map[model.ID]string, len(people))
	for _, person := range people {
		names[person.ID] = person.Name
	}

	timers := make([]panel.ActiveTimer, 0)

	for _, stage := range []model.Stage{model.StageSeparation, model.StageConference} {
		notes, err := noteDAO.FindByStageState(ctx, stage, model.TimerActive, database.DefaultFindOptions())
		if err != nil {
			return nil, err
		}

		for _, note := range notes {
			timer := note.StageTimer(stage)
			if timer.PersonID == nil || timer.StartedAt == nil {
				continue
			}

			timers = append(timers, panel.ActiveTimer{
				Number:      note.Number,
				Stage:       stage,
				PersonID:    *timer.PersonID,
				PersonName:  names[*timer.PersonID],
				ItemCount:   note.ItemCount,
				VolumeCount: note.VolumeCount,
				StartedAt:   *timer.StartedAt,
			})
		}
	}

	return timers, nil
}
