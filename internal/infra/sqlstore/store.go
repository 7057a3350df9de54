// Package sqlstore provides a SQL implementation of domain.Repository.
// SQLite (mattn/go-sqlite3) and PostgreSQL (pgx) share one schema.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver

	"github.com/runoshun/tempo/internal/domain"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// schemaVersion is recorded in tempo_meta on Initialize.
const schemaVersion = 1

// Store implements domain.Repository on a database/sql handle.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens a store. For SQLite, dsn is a file path and its directory is
// created; for PostgreSQL it is a connection string.
func Open(dialect Dialect, dsn string) (*Store, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
		driver = "sqlite3"
		dsn += "?_busy_timeout=5000"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unknown sql dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer at a time avoids SQLITE_BUSY inside transactions
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the schema if it doesn't exist.
// Returns true if the schema was newly created.
func (s *Store) Initialize() (bool, error) {
	ctx := context.Background()
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tempo_meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return false, fmt.Errorf("create meta table: %w", err)
	}

	var version string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM tempo_meta WHERE key = ?`), "schema_version").Scan(&version)
	switch {
	case err == nil:
		v, convErr := strconv.Atoi(version)
		if convErr != nil {
			return false, fmt.Errorf("parse schema version %q: %w", version, convErr)
		}
		if v > schemaVersion {
			return false, fmt.Errorf("database schema version %d is newer than supported version %d", v, schemaVersion)
		}
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("read schema version: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range s.schema() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO tempo_meta (key, value) VALUES (?, ?)`), "schema_version", strconv.Itoa(schemaVersion)); err != nil {
		return false, fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) schema() []string {
	ts, boolean := "TIMESTAMP", "BOOLEAN"
	if s.dialect == DialectPostgres {
		ts = "TIMESTAMPTZ"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			priority TEXT NOT NULL,
			due_date TEXT,
			reminder_at ` + ts + `,
			completed_at ` + ts + `,
			start_time ` + ts + `,
			end_time ` + ts + `,
			order_index INTEGER NOT NULL DEFAULT 0,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			total_time_spent_minutes INTEGER NOT NULL DEFAULT 0,
			completed ` + boolean + ` NOT NULL DEFAULT FALSE,
			is_active ` + boolean + ` NOT NULL DEFAULT FALSE,
			created ` + ts + ` NOT NULL,
			updated ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subtasks (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			title TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0,
			completed ` + boolean + ` NOT NULL DEFAULT FALSE,
			completed_at ` + ts + `,
			created ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			created ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS time_sessions (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			start_time ` + ts + ` NOT NULL,
			end_time ` + ts + `,
			duration_minutes INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_type ON tasks(user_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_task ON time_sessions(task_id)`,
	}
}

const taskColumns = `id, user_id, title, description, notes, category_id, type, priority,
	due_date, reminder_at, completed_at, start_time, end_time,
	order_index, duration_minutes, total_time_spent_minutes, completed, is_active, created, updated`

// GetTask retrieves a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// ListTasks retrieves tasks matching the filter, ordered by order index.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY order_index, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// SaveTask creates or updates a task. Attached subtasks are not written.
func (s *Store) SaveTask(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		return domain.ErrMissingID
	}
	var due any
	if task.DueDate != nil {
		due = task.DueDate.String()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			title = excluded.title,
			description = excluded.description,
			notes = excluded.notes,
			category_id = excluded.category_id,
			type = excluded.type,
			priority = excluded.priority,
			due_date = excluded.due_date,
			reminder_at = excluded.reminder_at,
			completed_at = excluded.completed_at,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			order_index = excluded.order_index,
			duration_minutes = excluded.duration_minutes,
			total_time_spent_minutes = excluded.total_time_spent_minutes,
			completed = excluded.completed,
			is_active = excluded.is_active,
			created = excluded.created,
			updated = excluded.updated`),
		task.ID, task.UserID, task.Title, task.Description, task.Notes, task.CategoryID,
		string(task.Type), string(task.Priority),
		due, nullTime(task.ReminderAt), nullTime(task.CompletedAt), nullTime(task.StartTime), nullTime(task.EndTime),
		task.OrderIndex, task.DurationMinutes, task.TotalTimeSpentMinutes, task.Completed, task.IsActive,
		task.Created.UTC(), task.Updated.UTC(),
	)
	return err
}

// DeleteTask removes a task and its subtasks.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM subtasks WHERE task_id = ?`), id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM tasks WHERE id = ?`), id)
		return err
	})
}

// SaveTaskOrder rewrites order indexes in one transaction.
// An unknown id rolls back the whole batch.
func (s *Store) SaveTaskOrder(ctx context.Context, orders []domain.TaskOrder) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(`UPDATE tasks SET order_index = ? WHERE id = ?`))
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, o := range orders {
			res, err := stmt.ExecContext(ctx, o.OrderIndex, o.TaskID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("task %s: %w", domain.ShortID(o.TaskID), domain.ErrTaskNotFound)
			}
		}
		return nil
	})
}

const subtaskColumns = `id, task_id, title, order_index, completed, completed_at, created`

// GetSubtask retrieves a subtask by ID.
func (s *Store) GetSubtask(ctx context.Context, id string) (*domain.Subtask, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+subtaskColumns+` FROM subtasks WHERE id = ?`), id)
	st, err := scanSubtask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

// ListSubtasks retrieves the subtasks of the given tasks (all when none given).
func (s *Store) ListSubtasks(ctx context.Context, taskIDs ...string) ([]*domain.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks`
	var args []any
	if len(taskIDs) > 0 {
		var in string
		in, args = inClause(taskIDs)
		query += " WHERE task_id IN " + in
	}
	query += " ORDER BY task_id, order_index, created, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var subtasks []*domain.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortSubtasks(subtasks)
	return subtasks, nil
}

// SaveSubtask creates or updates a subtask.
func (s *Store) SaveSubtask(ctx context.Context, subtask *domain.Subtask) error {
	if subtask.ID == "" {
		return domain.ErrMissingID
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO subtasks (`+subtaskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			task_id = excluded.task_id,
			title = excluded.title,
			order_index = excluded.order_index,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			created = excluded.created`),
		subtask.ID, subtask.TaskID, subtask.Title, subtask.OrderIndex, subtask.Completed,
		nullTime(subtask.CompletedAt), subtask.Created.UTC(),
	)
	return err
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM subtasks WHERE id = ?`), id)
	return err
}

// ListCategories retrieves the categories of a user, oldest first.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	query := `SELECT id, user_id, name, color, created FROM categories`
	var args []any
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Created); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// SaveCategory creates or updates a category.
func (s *Store) SaveCategory(ctx context.Context, category *domain.Category) error {
	if category.ID == "" {
		return domain.ErrMissingID
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO categories (id, user_id, name, color, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			color = excluded.color,
			created = excluded.created`),
		category.ID, category.UserID, category.Name, category.Color, category.Created.UTC(),
	)
	return err
}

// DeleteCategory removes a category. Tasks keep their reference.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM categories WHERE id = ?`), id)
	return err
}

// ListSessions retrieves sessions matching the filter, ordered by start.
func (s *Store) ListSessions(ctx context.Context, filter domain.SessionFilter) ([]*domain.TimeSession, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.TaskIDs) > 0 {
		in, inArgs := inClause(filter.TaskIDs)
		where = append(where, "task_id IN "+in)
		args = append(args, inArgs...)
	}
	if filter.OpenOnly {
		where = append(where, "end_time IS NULL")
	}

	query := `SELECT id, task_id, start_time, end_time, duration_minutes FROM time_sessions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_time, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*domain.TimeSession
	for rows.Next() {
		var (
			ts       domain.TimeSession
			end      sql.NullTime
			duration sql.NullInt64
		)
		if err := rows.Scan(&ts.ID, &ts.TaskID, &ts.StartTime, &end, &duration); err != nil {
			return nil, err
		}
		ts.EndTime = timePtr(end)
		if duration.Valid {
			d := int(duration.Int64)
			ts.DurationMinutes = &d
		}
		sessions = append(sessions, &ts)
	}
	return sessions, rows.Err()
}

// SaveSession creates or updates a session.
func (s *Store) SaveSession(ctx context.Context, session *domain.TimeSession) error {
	if session.ID == "" {
		return domain.ErrMissingID
	}
	var duration any
	if session.DurationMinutes != nil {
		duration = *session.DurationMinutes
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO time_sessions (id, task_id, start_time, end_time, duration_minutes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			task_id = excluded.task_id,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration_minutes = excluded.duration_minutes`),
		session.ID, session.TaskID, session.StartTime.UTC(), nullTime(session.EndTime), duration,
	)
	return err
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM time_sessions WHERE id = ?`), id)
	return err
}

// DeleteSessionsByTask removes every session of a task.
func (s *Store) DeleteSessionsByTask(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM time_sessions WHERE task_id = ?`), taskID)
	return err
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
// Queries must not contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                                 domain.Task
		typ, priority                     string
		due                               sql.NullString
		reminder, completedAt, start, end sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Notes, &t.CategoryID, &typ, &priority,
		&due, &reminder, &completedAt, &start, &end,
		&t.OrderIndex, &t.DurationMinutes, &t.TotalTimeSpentMinutes, &t.Completed, &t.IsActive,
		&t.Created, &t.Updated,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TaskType(typ)
	t.Priority = domain.Priority(priority)
	if due.Valid {
		d, err := domain.ParseDate(due.String)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", domain.ShortID(t.ID), err)
		}
		t.DueDate = &d
	}
	t.ReminderAt = timePtr(reminder)
	t.CompletedAt = timePtr(completedAt)
	t.StartTime = timePtr(start)
	t.EndTime = timePtr(end)
	return &t, nil
}

func scanSubtask(row scanner) (*domain.Subtask, error) {
	var (
		st          domain.Subtask
		completedAt sql.NullTime
	)
	if err := row.Scan(&st.ID, &st.TaskID, &st.Title, &st.OrderIndex, &st.Completed, &completedAt, &st.Created); err != nil {
		return nil, err
	}
	st.CompletedAt = timePtr(completedAt)
	return &st, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// Ensure Store implements the repository and initializer ports.
var (
	_ domain.Repository       = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
