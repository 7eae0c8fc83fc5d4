package tasks

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("task not found")

// Store is the persistence boundary for tasks. The HTTP handlers and the
// snapshot merge depend on this interface, not on SQL directly.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	GetByID(ctx context.Context, userID, taskID string) (Task, error)
	Create(ctx context.Context, userID string, in Input) (Task, error)
	Update(ctx context.Context, userID, taskID string, in Input, completed bool) (Task, error)
	Delete(ctx context.Context, userID, taskID string) error
}

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

const taskColumns = `
	t.id, t.title, t.description, t.completed,
	t.deadline, t.reminder, t.created_at, t.updated_at,
	c.id, c.name`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var (
		t        Task
		catID    sql.NullString
		catName  sql.NullString
		deadline sql.NullTime
		reminder sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed,
		&deadline, &reminder, &t.CreatedAt, &t.UpdatedAt,
		&catID, &catName,
	)
	if err != nil {
		return Task{}, err
	}
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	if reminder.Valid {
		r := reminder.Time
		t.Reminder = &r
	}
	if catID.Valid {
		t.Category = &Category{ID: catID.String, Name: catName.String}
	}
	return t, nil
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *SQLStore) GetByID(ctx context.Context, userID, taskID string) (Task, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = $1 AND t.id = $2
	`, userID, taskID)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// resolveCategory finds the user's category by name or creates it.
// An empty name means uncategorized. Creation failure is non-fatal: the
// task proceeds without a category, matching the write path's tolerance.
func (s *SQLStore) resolveCategory(ctx context.Context, userID, name string) sql.NullString {
	if name == "" {
		return sql.NullString{}
	}

	var id string
	err := s.DB.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE user_id=$1 AND name=$2",
		userID, name,
	).Scan(&id)
	if err == nil {
		return sql.NullString{String: id, Valid: true}
	}

	id = uuid.NewString()
	_, err = s.DB.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name) VALUES ($1, $2, $3)",
		id, userID, name,
	)
	if err != nil {
		log.Printf("[WARN] category create user=%s name=%q: %v", userID, name, err)
		return sql.NullString{}
	}
	return sql.NullString{String: id, Valid: true}
}

func (s *SQLStore) Create(ctx context.Context, userID string, in Input) (Task, error) {
	categoryID := s.resolveCategory(ctx, userID, in.Category)

	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, category_id, deadline, reminder, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
	`, id, userID, in.Title, in.Description, categoryID, nullTime(in.Deadline), nullTime(in.Reminder))
	if err != nil {
		return Task{}, err
	}

	return s.GetByID(ctx, userID, id)
}

func (s *SQLStore) Update(ctx context.Context, userID, taskID string, in Input, completed bool) (Task, error) {
	categoryID := s.resolveCategory(ctx, userID, in.Category)

	res, err := s.DB.ExecContext(ctx, `
		UPDATE tasks
		SET title=$1, description=$2, category_id=$3, deadline=$4, reminder=$5,
		    completed=$6, updated_at=$7
		WHERE id=$8 AND user_id=$9
	`, in.Title, in.Description, categoryID, nullTime(in.Deadline), nullTime(in.Reminder),
		completed, time.Now().UTC(), taskID, userID)
	if err != nil {
		return Task{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Task{}, ErrNotFound
	}

	return s.GetByID(ctx, userID, taskID)
}

func (s *SQLStore) Delete(ctx context.Context, userID, taskID string) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM tasks WHERE id=$1 AND user_id=$2",
		taskID, userID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
