package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"airbnb-etl/models"
	"airbnb-etl/utils"
)

const finalTableName = "listings_analitica"

// SQLiteWriter persists the final analytical table to an embedded SQLite
// file. Each write replaces the previous contents.
type SQLiteWriter struct {
	db     *sql.DB
	path   string
	logger *utils.Logger
}

// NewSQLiteWriter opens (or creates) the SQLite file at the given path.
// Intermediate directories are created automatically.
func NewSQLiteWriter(path string, logger *utils.Logger) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &SQLiteWriter{db: db, path: path, logger: logger}, nil
}

// Write replaces the listings_analitica table with the given rows. The DDL
// is derived from the table's columns, so one-hot columns discovered during
// cleaning land in the schema without code changes.
func (w *SQLiteWriter) Write(final *models.Table) error {
	cols := final.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("sqlite: final table has no columns")
	}

	if _, err := w.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, finalTableName)); err != nil {
		return fmt.Errorf("sqlite: drop old table: %w", err)
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%q %s", col, sqliteType(final, col))
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", finalTableName, strings.Join(defs, ", "))
	if _, err := w.db.Exec(ddl); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = fmt.Sprintf("%q", col)
		marks[i] = "?"
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		finalTableName, strings.Join(quoted, ", "), strings.Join(marks, ", "))

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	stmt, err := tx.Prepare(insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range final.Rows() {
		args := make([]any, len(cols))
		for i, col := range cols {
			args[i] = sqliteValue(r[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	w.logger.Info("[sqlite] %d rows written to %s (%s)", final.Len(), finalTableName, w.path)
	return nil
}

// Verify compares the stored row count with the expected one.
func (w *SQLiteWriter) Verify(expected int) error {
	var count int
	err := w.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", finalTableName)).Scan(&count)
	if err != nil {
		return fmt.Errorf("sqlite: verify count: %w", err)
	}
	if count == expected {
		w.logger.Info("[sqlite] verification ok (%d rows)", count)
	} else {
		w.logger.Warn("[sqlite] verification mismatch (expected %d, found %d)", expected, count)
	}
	return nil
}

// Close releases the database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// sqliteType infers a column affinity from the first non-null cell.
func sqliteType(t *models.Table, col string) string {
	for _, r := range t.Rows() {
		v := r[col]
		if models.IsNull(v) {
			continue
		}
		switch v.(type) {
		case int, int32, int64, bool:
			return "INTEGER"
		case float32, float64:
			return "REAL"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func sqliteValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case bool:
		if val {
			return 1
		}
		return 0
	case int32:
		return int64(val)
	default:
		return v
	}
}
