package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/models"
)

// Notifier dispatches membership notifications. Dispatch is best-effort:
// callers must never fail an operation because a notification could not be
// delivered.
type Notifier interface {
	InvitationSent(ctx context.Context, candidate *models.User, classroom *models.Classroom)
	JoinRequestReceived(ctx context.Context, classroom *models.Classroom, candidateID string)
	MembershipGranted(ctx context.Context, classroomID, userID string)
}

// LogNotifier is the stand-in dispatcher until a delivery channel exists;
// it records each event in the application log.
type LogNotifier struct {
	logger  *zap.Logger
	enabled bool
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger, enabled bool) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger, enabled: enabled}
}

func (n *LogNotifier) InvitationSent(ctx context.Context, candidate *models.User, classroom *models.Classroom) {
	if !n.enabled {
		return
	}
	n.logger.Info("invitation notification",
		zap.String("candidate_id", candidate.ID),
		zap.String("classroom_id", classroom.ID))
}

func (n *LogNotifier) JoinRequestReceived(ctx context.Context, classroom *models.Classroom, candidateID string) {
	if !n.enabled {
		return
	}
	n.logger.Info("join request notification",
		zap.String("candidate_id", candidateID),
		zap.String("classroom_id", classroom.ID))
}

func (n *LogNotifier) MembershipGranted(ctx context.Context, classroomID, userID string) {
	if !n.enabled {
		return
	}
	n.logger.Info("membership granted notification",
		zap.String("classroom_id", classroomID),
		zap.String("user_id", userID))
}
