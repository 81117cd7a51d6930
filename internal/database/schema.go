package database

import (
	"context"
	"fmt"
	"log/slog"

	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/observability"

	"gorm.io/gorm"
)

// MigrationStatus is the outcome of a single additive column migration.
type MigrationStatus string

const (
	StatusApplied        MigrationStatus = "applied"
	StatusAlreadyApplied MigrationStatus = "already_applied"
	StatusFailed         MigrationStatus = "failed"
)

// MigrationResult reports what happened to one column.
type MigrationResult struct {
	Table  string
	Column string
	Status MigrationStatus
	Err    error
}

// ColumnMigration names a model field that older databases may lack.
type ColumnMigration struct {
	Model any
	Table string
	Field string
}

// AdditiveColumns are the columns added after the first schema shipped.
var AdditiveColumns = []ColumnMigration{
	{Model: &models.Post{}, Table: "post", Field: "UserID"},
	{Model: &models.Post{}, Table: "post", Field: "Method"},
	{Model: &models.Post{}, Table: "post", Field: "Reactions"},
	{Model: &models.Post{}, Table: "post", Field: "Image"},
	{Model: &models.User{}, Table: "user", Field: "ProfilePic"},
}

// Tables lists every persisted model in creation order.
func Tables() []any {
	return []any{&models.User{}, &models.Post{}, &models.ShoppingItem{}}
}

// EnsureSchema creates missing tables and then applies AdditiveColumns.
// Failing to create a table is fatal; a failed column is reported and logged.
func EnsureSchema(ctx context.Context, db *gorm.DB) ([]MigrationResult, error) {
	migrator := db.WithContext(ctx).Migrator()

	for _, model := range Tables() {
		if migrator.HasTable(model) {
			continue
		}
		if err := migrator.CreateTable(model); err != nil {
			return nil, fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	results := ApplyColumns(ctx, db, AdditiveColumns)
	for _, r := range results {
		observability.SchemaMigrations.WithLabelValues(string(r.Status)).Inc()
		attrs := []any{slog.String("table", r.Table), slog.String("column", r.Column), slog.String("status", string(r.Status))}
		switch r.Status {
		case StatusFailed:
			middleware.Logger.WarnContext(ctx, "schema column migration failed", append(attrs, slog.String("error", r.Err.Error()))...)
		case StatusApplied:
			middleware.Logger.InfoContext(ctx, "schema column added", attrs...)
		}
	}

	return results, nil
}

// ApplyColumns adds each column that is not present yet. It never returns early.
func ApplyColumns(ctx context.Context, db *gorm.DB, columns []ColumnMigration) []MigrationResult {
	migrator := db.WithContext(ctx).Migrator()
	results := make([]MigrationResult, 0, len(columns))

	for _, col := range columns {
		res := MigrationResult{Table: col.Table, Column: col.Field}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(col.Model); err == nil {
			if f := stmt.Schema.LookUpField(col.Field); f != nil {
				res.Column = f.DBName
			}
		}

		switch {
		case migrator.HasColumn(col.Model, col.Field):
			res.Status = StatusAlreadyApplied
		default:
			if err := migrator.AddColumn(col.Model, col.Field); err != nil {
				res.Status = StatusFailed
				res.Err = err
			} else {
				res.Status = StatusApplied
			}
		}

		results = append(results, res)
	}

	return results
}
