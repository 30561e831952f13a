package models

import "time"

// InvitationStatus is the invitation lifecycle state. "waiting" is the only
// non-terminal state.
type InvitationStatus string

const (
	InvitationWaiting  InvitationStatus = "waiting"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRefused  InvitationStatus = "refused"
)

// InvitationAnswer values accepted from candidates.
const (
	AnswerAccept = "accept"
	AnswerRefuse = "refuse"
)

// ClassroomInvitation is an admin-initiated membership offer, resolved by the
// candidate. At most one waiting invitation exists per
// (classroom_id, candidate_user_id) pair.
type ClassroomInvitation struct {
	ID              string           `db:"id" json:"id"`
	ClassroomID     string           `db:"classroom_id" json:"classroom_id"`
	CandidateUserID string           `db:"candidate_user_id" json:"candidate_user_id"`
	Status          InvitationStatus `db:"status" json:"status"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// InvitationDetail enriches an invitation with classroom context for listing.
type InvitationDetail struct {
	ClassroomInvitation
	ClassroomName    string `db:"classroom_name" json:"classroom_name"`
	ClassroomSubject string `db:"classroom_subject" json:"classroom_subject"`
}

// InviteUserRequest holds the payload for inviting a candidate. The
// candidate is identified by email or username.
type InviteUserRequest struct {
	ClassroomID    string `json:"classroomId" validate:"required"`
	CandidateIdent string `json:"candidateIdent" validate:"required,max=250"`
}

// InvitationAnswerRequest holds a candidate's response to their waiting
// invitation.
type InvitationAnswerRequest struct {
	ClassroomID string `json:"classroomId" validate:"required"`
	Answer      string `json:"answer" validate:"required,oneof=accept refuse"`
}

// JoinRequestStatus is the join-request lifecycle state.
type JoinRequestStatus string

const (
	JoinRequestWaiting  JoinRequestStatus = "waiting"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestDenied   JoinRequestStatus = "denied"
)

// JoinRequestAnswer values accepted from classroom admins.
const (
	AnswerApprove = "approve"
	AnswerDeny    = "deny"
)

// SendJoinRequestRequest holds the payload for requesting to join a
// classroom.
type SendJoinRequestRequest struct {
	ClassroomID string `json:"classroomId" validate:"required"`
}

// JoinRequestAnswerRequest holds an admin's resolution of a waiting join
// request.
type JoinRequestAnswerRequest struct {
	RequestID string `json:"requestId" validate:"required"`
	Answer    string `json:"answer" validate:"required,oneof=approve deny"`
}

// ClassroomJoinRequest is a candidate-initiated membership request, resolved
// by a classroom admin. Same single-waiting-row invariant as invitations.
type ClassroomJoinRequest struct {
	ID              string            `db:"id" json:"id"`
	ClassroomID     string            `db:"classroom_id" json:"classroom_id"`
	CandidateUserID string            `db:"candidate_user_id" json:"candidate_user_id"`
	Status          JoinRequestStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}
