package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

type PersonDAO struct {
	Logger *slog.Logger
	*DB
}

func NewPersonDAO(logger *slog.Logger, db *DB) *PersonDAO {
	return &PersonDAO{
		Logger: logger.With("dao", "person"),
		DB:     db,
	}
}

func (dao *PersonDAO) Find(ctx context.Context, opts FindOptions) ([]model.Person, error) {
	logger := dao.Logger.With("query", "find")
	opts = opts.withDefaults()

	query, args, err := dao.Builder.
		Select("*").
		From("people").
		OrderBy("name ASC").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return []model.Person{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	people := make([]model.Person, 0, opts.Limit)
	if err := dao.SelectContext(ctx, &people, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return []model.Person{}, err
	}

	logger.Debug("success query execute", "countPeople", len(people))

	return people, nil
}

func (dao *PersonDAO) Get(ctx context.Context, id model.ID) (model.Person, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("people").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Person{}, err
	}

	var person model.Person
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&person); err != nil {
		if IsNoRows(err) {
			return model.Person{}, model.NewError("person", model.ErrNotFound)
		}
		return model.Person{}, err
	}

	return person, nil
}

func (dao *PersonDAO) GetByUsername(ctx context.Context, username string) (model.Person, error) {
	query, args, err := dao.Builder.
		Select("*").
		From("people").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Person{}, err
	}

	var person model.Person
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&person); err != nil {
		if IsNoRows(err) {
			return model.Person{}, model.NewError("person", model.ErrNotFound)
		}
		return model.Person{}, err
	}

	return person, nil
}

type InsertPersonDTO struct {
	Name         string
	Username     string
	PasswordHash string
	Role         model.Role
}

func (dao *PersonDAO) Insert(ctx context.Context, dto InsertPersonDTO) (model.ID, error) {
	logger := dao.Logger.With("query", "insert")

	query, args, err := dao.Builder.
		Insert("people").
		Columns("name", "username", "password_hash", "role").
		Values(dto.Name, dto.Username, dto.PasswordHash, dto.Role).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var id model.ID
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&id); err != nil {
		logger.Warn("failed query execute", "error", err)

		if IsUniqueViolation(err) {
			return 0, model.NewError("person", model.ErrExists)
		}
		return 0, err
	}

	logger.Debug("success query execute", "insertId", id)

	return id, nil
}

func (dao *PersonDAO) Delete(ctx context.Context, id model.ID) error {
	logger := dao.Logger.With("query", "delete")

	query, args, err := dao.Builder.
		Delete("people").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	logger.Debug("build query", "sql", query, "args", args)

	if _, err := dao.ExecContext(ctx, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return err
	}

	return nil
}

// SetBreak toggles a person's break flag. At most one person may be on break
// system-wide, so entering a break is a conditional update that loses when
// anyone else already holds the flag; a partial unique index backs the same
// rule in the schema.
func (dao *PersonDAO) SetBreak(ctx context.Context, id model.ID, onBreak bool) (model.Person, error) {
	logger := dao.Logger.With("query", "setBreak")

	builder := dao.Builder.
		Update("people").
		SetMap(map[string]any{
			"is_break":   onBreak,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING *")

	if onBreak {
		builder = builder.Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM people other WHERE other.is_break AND other.id <> ?)", id,
		))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return model.Person{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	var person model.Person
	row := dao.QueryRowxContext(ctx, query, args...)
	if err := row.StructScan(&person); err != nil {
		if IsNoRows(err) {
			if _, getErr := dao.Get(ctx, id); getErr != nil {
				return model.Person{}, getErr
			}
			return model.Person{}, model.NewError("break", model.ErrConflict)
		}

		// A concurrent break can slip between the NOT EXISTS read and the
		// write; the partial unique index catches it and it is the same
		// conflict as losing the conditional update.
		if IsUniqueViolation(err) {
			return model.Person{}, model.NewError("break", model.ErrConflict)
		}

		logger.Warn("failed query execute", "error", err)
		return model.Person{}, err
	}

	return person, nil
}
