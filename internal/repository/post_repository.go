package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/classtime/classtime-api/internal/models"
)

const postColumns = "id, classroom_id, creator_id, title, recipe, is_public, created_at, updated_at"

// PostRepository handles persistence of course content posts.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository constructs the repository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create persists a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	const query = `INSERT INTO posts (id, classroom_id, creator_id, title, recipe, is_public, created_at, updated_at)
        VALUES (:id, :classroom_id, :creator_id, :title, :recipe, :is_public, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// FindByID returns a post by its ID.
func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE id = $1 LIMIT 1", postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByClassroom returns a classroom's posts, newest first.
func (r *PostRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE classroom_id = $1 ORDER BY created_at DESC", postColumns)
	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post by its ID.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
