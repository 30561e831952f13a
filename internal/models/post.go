package models

import "time"

// CreatePostRequest holds the payload for publishing course content.
type CreatePostRequest struct {
	ClassroomID string `json:"classroomId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Recipe      string `json:"recipe" validate:"required"`
	IsPublic    bool   `json:"isPublic"`
}

// Post is a piece of course content inside a classroom.
type Post struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	CreatorID   string    `db:"creator_id" json:"creator_id"`
	Title       string    `db:"title" json:"title"`
	Recipe      string    `db:"recipe" json:"recipe"`
	IsPublic    bool      `db:"is_public" json:"isPublic"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
