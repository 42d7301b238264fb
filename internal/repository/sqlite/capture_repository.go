package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"password-dashboard/internal/domain"
	"password-dashboard/internal/repository"
)

const createCapturedTable = `
CREATE TABLE IF NOT EXISTS captured_passwords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	web_url TEXT NOT NULL,
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type CaptureRepository struct {
	db *sql.DB
}

func NewCaptureRepository(db *sql.DB) repository.CaptureRepository {
	return &CaptureRepository{db: db}
}

func (r *CaptureRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCapturedTable); err != nil {
		return fmt.Errorf("create captured_passwords table: %w", err)
	}
	return nil
}

func (r *CaptureRepository) Create(ctx context.Context, cred *domain.CapturedCredential) (int64, error) {
	cred.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO captured_passwords (web_url, password, created_at)
VALUES (?, ?, ?)`,
		cred.WebURL,
		cred.Password,
		cred.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert captured password: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("captured password last insert id: %w", err)
	}
	cred.ID = id
	return id, nil
}

func (r *CaptureRepository) Get(ctx context.Context, id int64) (*domain.CapturedCredential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, web_url, password, created_at
FROM captured_passwords
WHERE id = ?`,
		id,
	)
	return scanCaptured(row)
}

func (r *CaptureRepository) List(ctx context.Context) ([]domain.CapturedCredential, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, web_url, password, created_at
FROM captured_passwords
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list captured passwords: %w", err)
	}
	defer rows.Close()

	var out []domain.CapturedCredential
	for rows.Next() {
		cred, err := scanCaptured(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captured passwords: %w", err)
	}
	return out, nil
}

func scanCaptured(row interface {
	Scan(dest ...any) error
}) (*domain.CapturedCredential, error) {
	var cred domain.CapturedCredential
	if err := row.Scan(
		&cred.ID,
		&cred.WebURL,
		&cred.Password,
		&cred.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan captured password: %w", err)
	}
	return &cred, nil
}
