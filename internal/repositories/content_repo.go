package repositories

import (
	"context"
	"errors"

	"galleria/internal/common"
	"galleria/internal/models"

	"github.com/jackc/pgx/v5"
)

type ContentRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.ContentSection, error)
	Upsert(ctx context.Context, section *models.ContentSection) error
	List(ctx context.Context) ([]*models.ContentSection, error)
}

type contentRepo struct {
	db DB
}

func NewContentRepo(db DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) GetBySlug(ctx context.Context, slug string) (*models.ContentSection, error) {
	section := &models.ContentSection{}
	query := `
		SELECT slug, title, body, image_key, updated_at
		FROM content_sections
		WHERE slug = $1
	`
	err := r.db.QueryRow(ctx, query, slug).Scan(&section.Slug, &section.Title, &section.Body, &section.ImageKey, &section.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("content section %s", slug)
		}
		return nil, err
	}
	return section, nil
}

func (r *contentRepo) Upsert(ctx context.Context, section *models.ContentSection) error {
	query := `
		INSERT INTO content_sections (slug, title, body, image_key, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (slug) DO UPDATE
		SET title = EXCLUDED.title, body = EXCLUDED.body, image_key = EXCLUDED.image_key, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, section.Slug, section.Title, section.Body, section.ImageKey)
	return err
}

func (r *contentRepo) List(ctx context.Context) ([]*models.ContentSection, error) {
	query := `
		SELECT slug, title, body, image_key, updated_at
		FROM content_sections
		ORDER BY slug ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*models.ContentSection
	for rows.Next() {
		section := &models.ContentSection{}
		if err := rows.Scan(&section.Slug, &section.Title, &section.Body, &section.ImageKey, &section.UpdatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return sections, rows.Err()
}
