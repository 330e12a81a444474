package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the PostgreSQL Store. Every read and write of a single note
// is scoped by author, so another user's note looks exactly like a missing one.
type Repository struct {
	db *sql.DB

	stmtGet        *sql.Stmt
	stmtList       *sql.Stmt
	stmtSlugExists *sql.Stmt
	stmtDelete     *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	r := &Repository{db: db}

	var err error
	if r.stmtGet, err = db.PrepareContext(ctx, `
		SELECT id, title, text, slug, author_id, created_at
		FROM notes
		WHERE slug = $1 AND author_id = $2
	`); err != nil {
		return nil, err
	}
	if r.stmtList, err = db.PrepareContext(ctx, `
		SELECT id, title, text, slug, author_id, created_at
		FROM notes
		WHERE author_id = $1
		ORDER BY created_at, id
	`); err != nil {
		_ = r.Close()
		return nil, err
	}
	if r.stmtSlugExists, err = db.PrepareContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM notes WHERE slug = $1 AND id <> $2)
	`); err != nil {
		_ = r.Close()
		return nil, err
	}
	if r.stmtDelete, err = db.PrepareContext(ctx, `
		DELETE FROM notes WHERE slug = $1 AND author_id = $2
	`); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtGet, r.stmtList, r.stmtSlugExists, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, authorID int64, f Fields) (Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notes (title, text, slug, author_id) VALUES ($1, $2, $3, $4)
		RETURNING id, title, text, slug, author_id, created_at
	`, f.Title, f.Text, f.Slug, authorID).Scan(&n.ID, &n.Title, &n.Text, &n.Slug, &n.AuthorID, &n.CreatedAt)
	if err != nil {
		return Note{}, translate(err)
	}
	return n, nil
}

func (r *Repository) Get(ctx context.Context, authorID int64, slug string) (Note, error) {
	var n Note
	err := r.stmtGet.QueryRowContext(ctx, slug, authorID).Scan(&n.ID, &n.Title, &n.Text, &n.Slug, &n.AuthorID, &n.CreatedAt)
	if err != nil {
		return Note{}, translate(err)
	}
	return n, nil
}

func (r *Repository) List(ctx context.Context, authorID int64) ([]Note, error) {
	rows, err := r.stmtList.QueryContext(ctx, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotes(rows)
}

// Update rewrites the note currently at slug. The new slug may differ.
func (r *Repository) Update(ctx context.Context, authorID int64, slug string, f Fields) (Note, error) {
	var n Note
	err := r.db.QueryRowContext(ctx, `
		UPDATE notes
		SET title = $1, text = $2, slug = $3
		WHERE slug = $4 AND author_id = $5
		RETURNING id, title, text, slug, author_id, created_at
	`, f.Title, f.Text, f.Slug, slug, authorID).Scan(&n.ID, &n.Title, &n.Text, &n.Slug, &n.AuthorID, &n.CreatedAt)
	if err != nil {
		return Note{}, translate(err)
	}
	return n, nil
}

func (r *Repository) Delete(ctx context.Context, authorID int64, slug string) error {
	res, err := r.stmtDelete.ExecContext(ctx, slug, authorID)
	if err != nil {
		return err
	}
	a, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if a == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists reports whether any note other than excludeID uses slug.
// Pass 0 to check against every note.
func (r *Repository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	if err := r.stmtSlugExists.QueryRowContext(ctx, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", ErrSlugTaken, pgErr.ConstraintName)
	}
	return err
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	out := make([]Note, 0, 16)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Text, &n.Slug, &n.AuthorID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
