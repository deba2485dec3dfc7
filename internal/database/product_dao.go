package database

import (
	"context"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/Lumen-Desenvolvimento-Web/cronometro-duzzi/internal/model"
)

type ProductDAO struct {
	Logger *slog.Logger
	*DB
}

func NewProductDAO(logger *slog.Logger, db *DB) *ProductDAO {
	return &ProductDAO{
		Logger: logger.With("dao", "product"),
		DB:     db,
	}
}

func (dao *ProductDAO) FindByNoteNumber(ctx context.Context, number string) ([]model.Product, error) {
	logger := dao.Logger.With("query", "findByNoteNumber")

	query, args, err := dao.Builder.
		Select("*").
		From("products").
		Where(squirrel.Eq{"note_number": number}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return []model.Product{}, err
	}

	logger.Debug("build query", "sql", query, "args", args)

	products := make([]model.Product, 0, 8)
	if err := dao.SelectContext(ctx, &products, query, args...); err != nil {
		logger.Warn("failed query execute", "error", err)
		return []model.Product{}, err
	}

	return products, nil
}
