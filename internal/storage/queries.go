package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Thrip is one row of the thrips table. CreatedAt is kept as stored text.
type Thrip struct {
	ID        int64
	Tea       int64
	Other     int64
	CreatedAt string
}

const createThrip = `-- name: CreateThrip :one
INSERT INTO thrips (tea, other, created_at)
VALUES (?, ?, ?)
RETURNING id, tea, other, created_at
`

type CreateThripParams struct {
	Tea       int64
	Other     int64
	CreatedAt string
}

func (q *Queries) CreateThrip(ctx context.Context, arg CreateThripParams) (Thrip, error) {
	row := q.db.QueryRowContext(ctx, createThrip, arg.Tea, arg.Other, arg.CreatedAt)
	var i Thrip
	err := row.Scan(&i.ID, &i.Tea, &i.Other, &i.CreatedAt)
	return i, err
}

const listThrips = `-- name: ListThrips :many
SELECT id, tea, other, created_at
FROM thrips
ORDER BY created_at ASC, id ASC
`

func (q *Queries) ListThrips(ctx context.Context) ([]Thrip, error) {
	rows, err := q.db.QueryContext(ctx, listThrips)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Thrip
	for rows.Next() {
		var i Thrip
		if err := rows.Scan(&i.ID, &i.Tea, &i.Other, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countThrips = `-- name: CountThrips :one
SELECT COUNT(*) FROM thrips
`

func (q *Queries) CountThrips(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countThrips)
	var count int64
	err := row.Scan(&count)
	return count, err
}
