package service

import (
	"context"
	"fmt"

	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/pkg/jobs"
)

const (
	jobInvitationSent      = "invitation_sent"
	jobJoinRequestReceived = "join_request_received"
	jobMembershipGranted   = "membership_granted"
)

type notificationEvent struct {
	candidate   *models.User
	classroom   *models.Classroom
	classroomID string
	userID      string
}

// AsyncNotifier dispatches notifications through a background worker queue
// so membership operations never wait on delivery. Enqueue is best-effort;
// a full buffer drops the event.
type AsyncNotifier struct {
	delegate Notifier
	queue    *jobs.Queue
}

// NewAsyncNotifier wraps the delegate in a worker queue. Call Start before
// use and Stop on shutdown.
func NewAsyncNotifier(delegate Notifier, cfg jobs.QueueConfig) *AsyncNotifier {
	n := &AsyncNotifier{delegate: delegate}
	n.queue = jobs.NewQueue("notifications", n.handle, cfg)
	return n
}

// Start launches the dispatch workers.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *AsyncNotifier) Stop() {
	n.queue.Stop()
}

func (n *AsyncNotifier) InvitationSent(_ context.Context, candidate *models.User, classroom *models.Classroom) {
	n.queue.Enqueue(jobs.Job{
		Type:    jobInvitationSent,
		Payload: notificationEvent{candidate: candidate, classroom: classroom},
	})
}

func (n *AsyncNotifier) JoinRequestReceived(_ context.Context, classroom *models.Classroom, candidateID string) {
	n.queue.Enqueue(jobs.Job{
		Type:    jobJoinRequestReceived,
		Payload: notificationEvent{classroom: classroom, userID: candidateID},
	})
}

func (n *AsyncNotifier) MembershipGranted(_ context.Context, classroomID, userID string) {
	n.queue.Enqueue(jobs.Job{
		Type:    jobMembershipGranted,
		Payload: notificationEvent{classroomID: classroomID, userID: userID},
	})
}

func (n *AsyncNotifier) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(notificationEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s job", job.Type)
	}

	switch job.Type {
	case jobInvitationSent:
		n.delegate.InvitationSent(ctx, event.candidate, event.classroom)
	case jobJoinRequestReceived:
		n.delegate.JoinRequestReceived(ctx, event.classroom, event.userID)
	case jobMembershipGranted:
		n.delegate.MembershipGranted(ctx, event.classroomID, event.userID)
	default:
		return fmt.Errorf("unknown notification job %s", job.Type)
	}
	return nil
}
