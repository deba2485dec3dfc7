package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/lifecycle"
	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

type NoteDAO struct {
	Logger *slog.Logger
	*DB
}

func NewNoteDAO(logger *slog.Logger, db *DB) *NoteDAO {
	return &NoteDAO{
		Logger: logger.With("dao", "note"),
		DB:     db,
	}
}

// stageColumns maps a stage onto its actor/timestamp column set.
func stageColumns(stage model.Stage) (actor, started, finished string) {
	if stage == model.StageConference {
		return "conference_person_id", "conference_started_at", "conference_finished_at"
	}
	return "separator_id", "separation_started_at", "separation_finished_at"
}

// stageStateConds builds the null/non-null timestamp filter that selects
// notes in the given sub-state of a stage. The conference queue is gated on
// separation approval.
func stageStateConds(stage model.Stage, state model.TimerState) (squirrel.Sqlizer, error) {
	_, started, finished := stageColumns(stage)

	conds := squirrel.And{
		squirrel.NotEq{"status": model.StatusCancelled},
	}
	if stage == model.StageConference {
		conds = append(conds, squirrel.Eq{"approved": true})
	}

	switch state {
	case model.TimerQueued:
		conds = append(conds, squirrel.Eq{started: nil})
	case model.TimerActive:
		conds = append(conds, squirrel.NotEq{started: nil}, squirrel.Eq{finished: nil})
	case model.TimerFinished:
		if stage == model.StageConference {
			conds = append(conds, squirrel.NotEq{finished: nil})
		} else {
			conds = append(conds, squirrel.NotEq{finished: nil}, squirrel.Eq{"approved": false})
		}
	case model.TimerApproved:
		conds = append(conds, squirrel.NotEq{finished: nil}, squirrel.Eq{"approved": true})
	case model.TimerDone:
		conds = append(conds, squirrel.NotEq{finished: nil})
	default:
		return nil, fmt.Errorf("unsupported timer state %q", state)
	}

	return conds, nil
}

// FindByStageState lists notes in a given stage sub-state. Queued notes come
// out in queue order: explicit positions first, then order date.
func (dao *NoteDAO) FindByStageState(ctx context.Context, stage model.Stage, state model.TimerState, opts FindOptions) ([]model.Note, error) {
	logger := dao.Logger.With("query", "findByStageState")
	opts = opts.withDefaults()

	conds, err := stageStateConds(stage, state)
	if err != nil {
		return nil, err
	}

	_, started, _ := stageColumns(stage)
	orderBy := "queue_position ASC NULLS LAST, order_date ASC, id ASC"
	if state != model.TimerQueued {
		orderBy = started + " ASC"
	}

	query, args, err := dao.Builder.
		Select("*").
		From("notes").
		Where(conds).
		OrderBy(orderBy).
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	notes := make([]model.Note, 0, opts.Limit)
	if err := dao.SelectContext(ctx, &notes, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return nil, err
	}

	logger.Debug("success query execute", "countNotes", len(notes))

	return notes, nil
}

// FindRecords lists notes whose started/finished pair for the stage is
// complete, newest finish first.
func (dao *NoteDAO) FindRecords(ctx context.Context, stage model.Stage, opts FindOptions) ([]model.Note, error) {
	opts = opts.withDefaults()

	_, started, finished := stageColumns(stage)

	query, args, err := dao.Builder.
		Select("*").
		From("notes").
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Where(squirrel.NotEq{started: nil}).
		Where(squirrel.NotEq{finished: nil}).
		OrderBy(started + " DESC").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	dao.Logger.Debug("build query", "sql", query, "args", args)

	notes := make([]model.Note, 0, opts.Limit)
	if err := dao.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, err
	}

	return notes, nil
}

func (dao *NoteDAO) Get(ctx context.Context, id model.ID) (model.Note, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("notes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Note{}, err
	}

	var note model.Note
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&note); err != nil {
		if IsNoRows(err) {
			return model.Note{}, model.NewError("note", model.ErrNotFound)
		}
		return model.Note{}, err
	}

	return note, nil
}

// GetOpenByNumber resolves a note by its order number among non-cancelled
// notes, where numbers are unique.
func (dao *NoteDAO) GetOpenByNumber(ctx context.Context, number string) (model.Note, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("notes").
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Note{}, err
	}

	var note model.Note
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&note); err != nil {
		if IsNoRows(err) {
			return model.Note{}, model.NewError("note", model.ErrNotFound)
		}
		return model.Note{}, err
	}

	return note, nil
}

func (dao *NoteDAO) Exists(ctx context.Context, number string) (bool, error) {
	query, args, err := dao.Builder.
		Select("1").
		From("notes").
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&one); err != nil {
		if IsNoRows(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

type InsertNoteDTO struct {
	Number      string
	ItemCount   int
	VolumeCount int
	Destination string
	OrderDate   time.Time
}

type InsertProductDTO struct {
	Code        string
	Description string
	Amount      int
	Location    string
}

// Insert creates a note and its product rows in one transaction, so a
// failing product write cannot leave a half-created note behind.
func (dao *NoteDAO) Insert(ctx context.Context, dto InsertNoteDTO, products []InsertProductDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	tx, err := dao.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := dao.Builder.
		Insert("notes").
		Columns("number", "item_count", "volume_count", "destination", "order_date", "status").
		Values(dto.Number, dto.ItemCount, dto.VolumeCount, dto.Destination, dto.OrderDate, model.StatusPending).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var id model.ID
	row := tx.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&id); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsUniqueViolation(err) {
			return 0, model.NewError("note", model.ErrExists)
		}
		return 0, err
	}

	for _, product := range products {
		query, args, err := dao.Builder.
			Insert("products").
			Columns("note_number", "product_code", "product_description", "product_amount", "product_location").
			Values(dto.Number, product.Code, product.Description, product.Amount, product.Location).
			ToSql()
		if err != nil {
			return 0, err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			logger.Warn("failed query execute", "error", err)
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	logger.Debug("success query execute", "insertId", id, "countProducts", len(products))

	return id, nil
}

type UpdateNoteDTO struct {
	ItemCount   *int
	VolumeCount *int
	Destination *string
	OrderDate   *time.Time
}

// UpdateByNumber applies conditional field updates on an open note.
func (dao *NoteDAO) UpdateByNumber(ctx context.Context, number string, dto UpdateNoteDTO) error {
	logger := dao.Logger.With("query", "updateByNumber")

	data := make(map[string]any, 5)
	data["updated_at"] = time.Now()
	if dto.ItemCount != nil {
		data["item_count"] = *dto.ItemCount
	}
	if dto.VolumeCount != nil {
		data["volume_count"] = *dto.VolumeCount
	}
	if dto.Destination != nil {
		data["destination"] = *dto.Destination
	}
	if dto.OrderDate != nil {
		data["order_date"] = *dto.OrderDate
	}

	query, args, err := dao.Builder.
		Update("notes").
		SetMap(data).
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	res, err := dao.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.NewError("note", model.ErrNotFound)
	}

	return nil
}

// Claim moves a queued note to active for the given stage and person. All
// guards run inside the UPDATE itself (note still queued, person not on
// break, person without another active timer in the stage), so two
// concurrent claims cannot both win. When the update matches nothing the
// state is re-read and the lifecycle rules produce the precise refusal.
func (dao *NoteDAO) Claim(ctx context.Context, number string, stage model.Stage, personID model.ID, now time.Time) (model.Note, error) {
	logger := dao.Logger.With("query", "claim", "stage", stage)

	actor, started, finished := stageColumns(stage)

	activeStatus := model.StatusSeparating
	if stage == model.StageConference {
		activeStatus = model.StatusConferring
	}

	builder := dao.Builder.
		Update("notes").
		SetMap(map[string]any{
			actor:        personID,
			started:      now,
			"status":     activeStatus,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Where(squirrel.Eq{started: nil}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM people WHERE id = ? AND is_break)",
			personID,
		)).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM notes other WHERE other."+actor+" = ? AND other."+started+" IS NOT NULL AND other."+finished+" IS NULL AND other.status <> ?)",
			personID, model.StatusCancelled,
		)).
		Suffix("RETURNING *")

	if stage == model.StageConference {
		builder = builder.Where(squirrel.Eq{"approved": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return model.Note{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var note model.Note
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&note); err != nil {
		if IsNoRows(err) {
			return model.Note{}, dao.diagnoseClaim(ctx, number, stage, personID)
		}

		logger.Warn("failed query execute", "error", err)
		return model.Note{}, err
	}

	logger.Debug("success query execute", "number", number, "personId", personID)

	return note, nil
}

// diagnoseClaim explains a claim that matched no row. The guards are
// re-evaluated against a fresh read; if everything still looks fine the claim
// was lost to a concurrent winner between the update and this read.
func (dao *NoteDAO) diagnoseClaim(ctx context.Context, number string, stage model.Stage, personID model.ID) error {
	note, err := dao.GetOpenByNumber(ctx, number)
	if err != nil {
		return err
	}

	people := NewPersonDAO(dao.Logger, dao.DB)
	person, err := people.Get(ctx, personID)
	if err != nil {
		return err
	}

	active, err := dao.FindByStageState(ctx, stage, model.TimerActive, DefaultFindOptions())
	if err != nil {
		return err
	}

	if err := lifecycle.CanClaim(note, stage, person, active); err != nil {
		return err
	}
	return lifecycle.ErrAlreadyClaimed
}

// Stop closes a running stage timer.
func (dao *NoteDAO) Stop(ctx context.Context, number string, stage model.Stage, now time.Time) (model.Note, error) {
	logger := dao.Logger.With("query", "stop", "stage", stage)

	_, started, finished := stageColumns(stage)

	finishedStatus := model.StatusSeparated
	if stage == model.StageConference {
		finishedStatus = model.StatusConferred
	}

	query, args, err := dao.Builder.
		Update("notes").
		SetMap(map[string]any{
			finished:     now,
			"status":     finishedStatus,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Where(squirrel.NotEq{started: nil}).
		Where(squirrel.Eq{finished: nil}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return model.Note{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var note model.Note
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&note); err != nil {
		if IsNoRows(err) {
			if _, err := dao.GetOpenByNumber(ctx, number); err != nil {
				return model.Note{}, err
			}
			return model.Note{}, lifecycle.ErrNotActive
		}

		logger.Warn("failed query execute", "error", err)
		return model.Note{}, err
	}

	return note, nil
}

type AmendProductDTO struct {
	ID     model.ID
	Amount int
}

// Approve records approval of a finished separation, optionally amending
// product quantities first; both writes share one transaction. Approving an
// already approved note returns it unchanged. Approval is refused once
// conference has started.
func (dao *NoteDAO) Approve(ctx context.Context, number string, amendments []AmendProductDTO, now time.Time) (model.Note, error) {
	logger := dao.Logger.With("query", "approve")

	tx, err := dao.BeginTxx(ctx, nil)
	if err != nil {
		return model.Note{}, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, amendment := range amendments {
		query, args, err := dao.Builder.
			Update("products").
			SetMap(map[string]any{
				"product_amount": amendment.Amount,
				"updated_at":     now,
			}).
			Where(squirrel.Eq{"id": amendment.ID}).
			Where(squirrel.Eq{"note_number": number}).
			ToSql()
		if err != nil {
			return model.Note{}, err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			logger.Warn("failed query execute", "error", err)
			return model.Note{}, err
		}
	}

	query, args, err := dao.Builder.
		Update("notes").
		SetMap(map[string]any{
			"approved":   true,
			"status":     model.StatusApproved,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"number": number}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Where(squirrel.NotEq{"separation_finished_at": nil}).
		Where(squirrel.Eq{"conference_started_at": nil}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return model.Note{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var note model.Note
	row := tx.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&note); err != nil {
		if IsNoRows(err) {
			existing, getErr := dao.GetOpenByNumber(ctx, number)
			if getErr != nil {
				return model.Note{}, getErr
			}
			if existing.Approved {
				// Already approved; conference may even be underway. No-op.
				return existing, nil
			}
			return model.Note{}, lifecycle.ErrNotFinished
		}

		logger.Warn("failed query execute", "error", err)
		return model.Note{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Note{}, err
	}

	logger.Debug("success query execute", "number", number, "countAmendments", len(amendments))

	return note, nil
}

// Cancel marks queued notes cancelled and reports which numbers actually
// changed. Notes with a running or finished timer are skipped, matching the
// lifecycle rule that only queued notes can be cancelled.
func (dao *NoteDAO) Cancel(ctx context.Context, numbers []string, now time.Time) ([]string, error) {
	logger := dao.Logger.With("query", "cancel")

	query, args, err := dao.Builder.
		Update("notes").
		SetMap(map[string]any{
			"status":     model.StatusCancelled,
			"updated_at": now,
		}).
		Where(squirrel.Eq{"number": numbers}).
		Where(squirrel.NotEq{"status": model.StatusCancelled}).
		Where(squirrel.Or{
			squirrel.Eq{"separation_started_at": nil},
			squirrel.And{
				squirrel.Eq{"approved": true},
				squirrel.Eq{"conference_started_at": nil},
			},
		}).
		Suffix("RETURNING number").
		ToSql()
	if err != nil {
		return nil, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	cancelled := make([]string, 0, len(numbers))
	if err := dao.SelectContext(ctx, &cancelled, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return nil, err
	}

	logger.Debug("success query execute", "countCancelled", len(cancelled))

	return cancelled, nil
}

// reorderClearQuery builds the update resetting queue_position on queued
// notes of the stage that are absent from the submitted sequence. Without it
// a note positioned by an earlier reorder would interleave into the new one.
func reorderClearQuery(b squirrel.StatementBuilderType, stage model.Stage, numbers []string, now time.Time) (string, []any, error) {
	conds, err := stageStateConds(stage, model.TimerQueued)
	if err != nil {
		return "", nil, err
	}

	return b.
		Update("notes").
		SetMap(map[string]any{
			"queue_position": nil,
			"updated_at":     now,
		}).
		Where(conds).
		Where(squirrel.NotEq{"number": numbers}).
		Where(squirrel.NotEq{"queue_position": nil}).
		ToSql()
}

// reorderPositionQuery builds the update assigning one note its place in the
// submitted sequence, provided it is still queued in the stage.
func reorderPositionQuery(b squirrel.StatementBuilderType, stage model.Stage, number string, position int, now time.Time) (string, []any, error) {
	conds, err := stageStateConds(stage, model.TimerQueued)
	if err != nil {
		return "", nil, err
	}

	return b.
		Update("notes").
		SetMap(map[string]any{
			"queue_position": position,
			"updated_at":     now,
		}).
		Where(squirrel.Eq{"number": number}).
		Where(conds).
		ToSql()
}

// Reorder persists an explicit queue sequence: each submitted number gets its
// position in order, and queued notes left out of the sequence lose any stale
// position, all inside one transaction.
func (dao *NoteDAO) Reorder(ctx context.Context, stage model.Stage, numbers []string, now time.Time) error {
	logger := dao.Logger.With("query", "reorder", "stage", stage)

	tx, err := dao.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := reorderClearQuery(dao.Builder, stage, numbers, now)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	for position, number := range numbers {
		query, args, err := reorderPositionQuery(dao.Builder, stage, number, position+1, now)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			logger.Warn("failed query execute", "error", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Debug("success query execute", "countPositions", len(numbers))

	return nil
}
