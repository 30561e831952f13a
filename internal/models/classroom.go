package models

import "time"

// Classroom is a learning group owned by its creator.
type Classroom struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Subject     string    `db:"subject" json:"subject"`
	Description string    `db:"description" json:"description"`
	CreatorID   string    `db:"creator_id" json:"creator_id"`
	Thumbnail   string    `db:"thumbnail" json:"thumbnail"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateClassroomRequest holds the payload for opening a new classroom.
type CreateClassroomRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Subject     string `json:"subject" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,max=500"`
}

// ClassroomProfile is the public view of a classroom plus the caller's
// membership flag. IsMember is always computed from current data, never from
// cache.
type ClassroomProfile struct {
	Classroom Classroom `json:"classroom"`
	Creator   UserInfo  `json:"creator"`
	Posts     []Post    `json:"posts"`
	IsMember  bool      `json:"isMember"`
}

// MemberRole is the role a user holds inside one classroom.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

// ClassroomMember is the join row linking a user to a classroom.
// At most one row exists per (classroom_id, user_id) pair; the store enforces
// this with a unique index.
type ClassroomMember struct {
	ID          string     `db:"id" json:"id"`
	ClassroomID string     `db:"classroom_id" json:"classroom_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Role        MemberRole `db:"role" json:"role"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// MemberDetail enriches a member row with user info for roster responses.
type MemberDetail struct {
	ClassroomMember
	Email     string `db:"email" json:"email"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"fname"`
	LastName  string `db:"last_name" json:"lname"`
}
