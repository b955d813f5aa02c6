package etl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/pkg/errors"
)

// SQLLoader mirrors the output file into a SQL Server table. Every load
// replaces the table contents inside one transaction. Table must be a
// plain identifier; it is interpolated into the statements.
type SQLLoader struct {
	DB    *sql.DB
	Table string
}

func NewSQLLoader(db *sql.DB, table string) *SQLLoader {
	return &SQLLoader{DB: db, Table: table}
}

// EnsureTable creates the target table when it does not exist yet.
func (l *SQLLoader) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
	user_id BIGINT NOT NULL,
	title NVARCHAR(MAX) NOT NULL,
	body NVARCHAR(MAX) NOT NULL
)`, l.Table, l.Table)
	if _, err := l.DB.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, "create table %s", l.Table)
	}
	return nil
}

func (l *SQLLoader) Load(ctx context.Context, posts []models.Post) (err error) {
	if len(posts) == 0 {
		return nil
	}

	// 1. Open a transaction so readers never see a half-replaced table.
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 2. Clear what the previous run left behind.
	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", l.Table))
	if err != nil {
		return errors.Wrapf(err, "clear table %s", l.Table)
	}
	removed, _ := res.RowsAffected()

	// 3. Insert the new rows. go-mssqldb uses @pN placeholders.
	insert := fmt.Sprintf("INSERT INTO %s (user_id, title, body) VALUES (@p1, @p2, @p3)", l.Table)
	for i, p := range posts {
		if _, err = tx.ExecContext(ctx, insert, p.UserID, p.Title, p.Body); err != nil {
			return errors.Wrapf(err, "insert post %d into %s", i, l.Table)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}

	logger.Infof("SQL replace on %s: removed %d, inserted %d", l.Table, removed, len(posts))
	return nil
}
