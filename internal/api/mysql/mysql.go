// Package mysql stores tasks in a MySQL table.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/five82/tally/internal/api"
	"github.com/five82/tally/internal/task"
)

// Ensure Service implements api.Service at compile time.
var _ api.Service = (*Service)(nil)

const createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Service is an api.Service backed by a *sql.DB.
type Service struct {
	db *sql.DB
}

// Open connects to dsn, checks the connection and creates the tasks table
// if needed.
func Open(ctx context.Context, dsn string) (*Service, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	connector, err := gomysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping mysql: %v", api.ErrUnavailable, err)
	}
	s := &Service{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("mysql: connected to %s/%s", cfg.Addr, cfg.DBName)
	return s, nil
}

// Close releases the connection pool.
func (s *Service) Close() error { return s.db.Close() }

func (s *Service) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTasks); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	return nil
}

// List returns every task, newest first.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, completed FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// Create inserts an open task and returns it with the generated id.
func (s *Service) Create(ctx context.Context, draft task.Draft) (task.Task, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks (title, description, completed) VALUES (?, ?, FALSE)`,
		draft.Title, draft.Description)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task id: %w", err)
	}
	return task.Task{ID: id, Title: draft.Title, Description: draft.Description}, nil
}

// Update overwrites the row with t.ID. A missing row is not an error.
func (s *Service) Update(ctx context.Context, t task.Task) (task.Task, error) {
	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET title=?, description=?, completed=? WHERE id=?`,
		t.Title, t.Description, t.Completed, t.ID); err != nil {
		return task.Task{}, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return t, nil
}

// Delete removes the row with id. A missing row is not an error.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id); err != nil {
		return 0, fmt.Errorf("delete task %d: %w", id, err)
	}
	return id, nil
}
