package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/pkg/config"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
	"github.com/classtime/classtime-api/pkg/export"
)

// ClassroomStore persists classrooms.
type ClassroomStore interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	ListByMember(ctx context.Context, userID string) ([]models.Classroom, error)
}

// RosterStore lists classroom members with user info.
type RosterStore interface {
	ListByClassroom(ctx context.Context, classroomID string) ([]models.MemberDetail, error)
}

// ClassroomUserStore loads users for profile embedding.
type ClassroomUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ClassroomPostStore lists a classroom's posts for the profile view.
type ClassroomPostStore interface {
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Post, error)
}

// RosterExporter renders a roster in one output format.
type RosterExporter interface {
	Render(rows []export.RosterRow) ([]byte, error)
}

// ClassroomService serves classroom lifecycle and read operations.
type ClassroomService struct {
	classrooms ClassroomStore
	roster     RosterStore
	users      ClassroomUserStore
	posts      ClassroomPostStore
	cache      *CacheService
	authorizer Authorizer
	validate   *validator.Validate
	cacheCfg   config.CacheConfig
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(
	classrooms ClassroomStore,
	roster RosterStore,
	users ClassroomUserStore,
	posts ClassroomPostStore,
	cache *CacheService,
	authorizer Authorizer,
	validate *validator.Validate,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *ClassroomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{
		classrooms: classrooms,
		roster:     roster,
		users:      users,
		posts:      posts,
		cache:      cache,
		authorizer: authorizer,
		validate:   validate,
		cacheCfg:   cacheCfg,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

func classroomProfileKey(classroomID string) string {
	return fmt.Sprintf("classroom:profile:%s", classroomID)
}

// CreateClassroom opens a new classroom with the caller as its first admin.
// The creator's admin member row is written in the same transaction as the
// classroom itself.
func (s *ClassroomService) CreateClassroom(ctx context.Context, caller models.Identity, req *models.CreateClassroomRequest) (*models.Classroom, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, failValidation(err)
	}

	classroom := &models.Classroom{
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
		CreatorID:   caller.UserID,
		Thumbnail:   req.Thumbnail,
	}
	if err := s.classrooms.Create(ctx, classroom); err != nil {
		return nil, internalError(err)
	}

	s.logger.Info("classroom created",
		zap.String("classroom_id", classroom.ID),
		zap.String("creator_id", caller.UserID))
	return classroom, nil
}

// Profile returns the public classroom view with the caller's membership
// flag. The classroom, creator and posts may be served from cache; the
// membership flag is always computed from current data.
func (s *ClassroomService) Profile(ctx context.Context, caller models.Identity, classroomID string) (*models.ClassroomProfile, error) {
	if !authz.IsValidID(classroomID) {
		return nil, invalidField(msgInvalidClassroomID)
	}

	profile := &models.ClassroomProfile{}
	hit, _ := s.cache.Get(ctx, classroomProfileKey(classroomID), profile)
	if !hit {
		loaded, err := s.loadProfile(ctx, classroomID)
		if err != nil {
			return nil, err
		}
		profile = loaded
		_ = s.cache.Set(ctx, classroomProfileKey(classroomID), profile, s.cacheCfg.ClassroomTTL)
	}

	profile.IsMember = s.authorizer.IsClassroomMember(ctx, caller, classroomID)
	return profile, nil
}

func (s *ClassroomService) loadProfile(ctx context.Context, classroomID string) (*models.ClassroomProfile, error) {
	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Classroom not found")
		}
		return nil, internalError(err)
	}

	creator, err := s.users.FindByID(ctx, classroom.CreatorID)
	if err != nil {
		return nil, internalError(err)
	}

	posts, err := s.posts.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, internalError(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &models.ClassroomProfile{
		Classroom: *classroom,
		Creator:   creator.Info(),
		Posts:     posts,
	}, nil
}

// Members returns the classroom roster. Membership is checked before any
// existence lookup, so non-members get Forbidden whether or not the
// classroom exists.
func (s *ClassroomService) Members(ctx context.Context, caller models.Identity, classroomID string) ([]models.MemberDetail, error) {
	if !authz.IsValidID(classroomID) {
		return nil, invalidField(msgInvalidClassroomID)
	}
	if !s.authorizer.IsClassroomMember(ctx, caller, classroomID) {
		return nil, appErrors.ErrForbidden
	}

	members, err := s.roster.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, internalError(err)
	}
	return members, nil
}

// UserClassrooms lists the classrooms a user belongs to. Self-only.
func (s *ClassroomService) UserClassrooms(ctx context.Context, caller models.Identity, userID string) ([]models.Classroom, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(userID) {
		return nil, invalidField(msgInvalidUserID)
	}
	if caller.UserID != userID {
		return nil, appErrors.ErrForbidden
	}

	classrooms, err := s.classrooms.ListByMember(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	if classrooms == nil {
		classrooms = []models.Classroom{}
	}
	return classrooms, nil
}

// ExportRoster renders the classroom roster as CSV or PDF. Admin-only.
func (s *ClassroomService) ExportRoster(ctx context.Context, caller models.Identity, classroomID, format string) ([]byte, string, error) {
	if !authz.IsValidID(classroomID) {
		return nil, "", invalidField(msgInvalidClassroomID)
	}
	if format != "csv" && format != "pdf" {
		return nil, "", invalidField("Format invalid or not specified")
	}
	if !s.authorizer.IsClassroomAdmin(ctx, caller, classroomID) {
		return nil, "", appErrors.ErrForbidden
	}

	classroom, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		return nil, "", internalError(err)
	}

	members, err := s.roster.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, "", internalError(err)
	}

	rows := make([]export.RosterRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, export.RosterRow{
			Username: m.Username,
			FullName: fmt.Sprintf("%s %s", m.FirstName, m.LastName),
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.CreatedAt.Format("2006-01-02"),
		})
	}

	switch format {
	case "pdf":
		data, err := s.pdf.Render(classroom.Name, rows)
		if err != nil {
			return nil, "", internalError(err)
		}
		return data, "application/pdf", nil
	default:
		data, err := s.csv.Render(rows)
		if err != nil {
			return nil, "", internalError(err)
		}
		return data, "text/csv", nil
	}
}

// InvalidateProfile drops the cached classroom profile after a write.
func (s *ClassroomService) InvalidateProfile(ctx context.Context, classroomID string) {
	_ = s.cache.Invalidate(ctx, classroomProfileKey(classroomID))
}
