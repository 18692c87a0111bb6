package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/pkg/id"
	"github.com/maxschool-bot/internal/pkg/phone"
	"github.com/maxschool-bot/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldSchoolID  = "school_id"
	fieldPhone     = "phone"
	fieldEmail     = "email"
	fieldFullName  = "full_name"
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldRole      = "role"
	fieldGroupName = "group_name"
)

// Service is the administrative side of the directory: provisioning the
// records that the registration flow later matches against, plus the
// guardian and mentor links attached to them.
type Service interface {
	Create(ctx context.Context, req domain.CreateRecordRequest) (*domain.DirectoryRecord, error)
	Get(ctx context.Context, recordID string) (*domain.DirectoryRecord, error)
	List(ctx context.Context, limit int, cursor, role, group string) ([]domain.DirectoryRecord, string, error)
	Update(ctx context.Context, recordID string, req domain.UpdateRecordRequest) (*domain.DirectoryRecord, error)
	Delete(ctx context.Context, recordID string) error

	AddGuardian(ctx context.Context, recordID string, req domain.AddGuardianRequest) (*domain.Guardian, error)
	ListGuardians(ctx context.Context, recordID string) ([]domain.Guardian, error)
	AddMentor(ctx context.Context, recordID string, req domain.AddMentorRequest) (*domain.Mentor, error)
	ListMentors(ctx context.Context, recordID string) ([]domain.Mentor, error)
}

type recordStore interface {
	Put(ctx context.Context, rec *domain.DirectoryRecord) error
	Get(ctx context.Context, recordID string) (*domain.DirectoryRecord, error)
	GetByPhone(ctx context.Context, rawPhone string) (*domain.DirectoryRecord, error)
	GetBySchoolID(ctx context.Context, schoolID string) (*domain.DirectoryRecord, error)
	Update(ctx context.Context, recordID string, updates map[string]interface{}) error
	Delete(ctx context.Context, recordID string) error
	ScanPage(ctx context.Context, limit int32, cursor, role, group string) ([]domain.DirectoryRecord, string, error)
}

type guardianStore interface {
	Put(ctx context.Context, g *domain.Guardian) error
	ListByRecord(ctx context.Context, recordID string) ([]domain.Guardian, error)
	DeleteByRecord(ctx context.Context, recordID string) error
}

type mentorStore interface {
	Put(ctx context.Context, m *domain.Mentor) error
	ListByRecord(ctx context.Context, recordID string) ([]domain.Mentor, error)
	DeleteByRecord(ctx context.Context, recordID string) error
}

type service struct {
	repo         recordStore
	guardianRepo guardianStore
	mentorRepo   mentorStore
}

type ServiceDeps struct {
	RecordRepo   recordStore
	GuardianRepo guardianStore
	MentorRepo   mentorStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.RecordRepo,
		guardianRepo: deps.GuardianRepo,
		mentorRepo:   deps.MentorRepo,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRecordRequest) (*domain.DirectoryRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if req.Phone != nil && *req.Phone != "" {
		normalized := phone.Normalize(*req.Phone)
		if normalized == "" {
			return nil, fmt.Errorf("phone has no digits: %w", domain.ErrBadRequest)
		}
		if _, err := s.repo.GetByPhone(ctx, normalized); err == nil {
			return nil, fmt.Errorf("phone already in the directory: %w", domain.ErrConflict)
		}
		req.Phone = &normalized
	}
	if req.SchoolID != nil && *req.SchoolID != "" {
		if _, err := s.repo.GetBySchoolID(ctx, *req.SchoolID); err == nil {
			return nil, fmt.Errorf("school id already in the directory: %w", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	rec := &domain.DirectoryRecord{
		RecordID:  id.New(),
		SchoolID:  req.SchoolID,
		Phone:     req.Phone,
		Email:     req.Email,
		FullName:  req.FullName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		GroupName: req.GroupName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Get(ctx context.Context, recordID string) (*domain.DirectoryRecord, error) {
	return s.repo.Get(ctx, recordID)
}

func (s *service) List(ctx context.Context, limit int, cursor, role, group string) ([]domain.DirectoryRecord, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor, role, group)
}

func (s *service) Update(ctx context.Context, recordID string, req domain.UpdateRecordRequest) (*domain.DirectoryRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	updates := map[string]interface{}{}
	if req.SchoolID != nil {
		updates[fieldSchoolID] = *req.SchoolID
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		if normalized == "" {
			return nil, fmt.Errorf("phone has no digits: %w", domain.ErrBadRequest)
		}
		if other, err := s.repo.GetByPhone(ctx, normalized); err == nil && other.RecordID != recordID {
			return nil, fmt.Errorf("phone already in the directory: %w", domain.ErrConflict)
		}
		updates[fieldPhone] = normalized
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.FirstName != nil {
		updates[fieldFirstName] = *req.FirstName
	}
	if req.LastName != nil {
		updates[fieldLastName] = *req.LastName
	}
	if req.Role != nil {
		updates[fieldRole] = *req.Role
	}
	if req.GroupName != nil {
		updates[fieldGroupName] = *req.GroupName
	}

	if len(updates) == 0 {
		return s.repo.Get(ctx, recordID)
	}
	if err := s.repo.Update(ctx, recordID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, recordID)
}

// Delete removes the record together with its guardian and mentor links.
// Deleting also discards any platform binding, so the person can re-register
// only after an administrator recreates the record.
func (s *service) Delete(ctx context.Context, recordID string) error {
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return err
	}
	if err := s.guardianRepo.DeleteByRecord(ctx, recordID); err != nil {
		return err
	}
	if err := s.mentorRepo.DeleteByRecord(ctx, recordID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, recordID)
}

func (s *service) AddGuardian(ctx context.Context, recordID string, req domain.AddGuardianRequest) (*domain.Guardian, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return nil, err
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		req.Phone = &normalized
	}
	relation := req.Relation
	if relation == "" {
		relation = "parent"
	}
	g := &domain.Guardian{
		GuardianID: id.New(),
		RecordID:   recordID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Relation:   relation,
	}
	if err := s.guardianRepo.Put(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) ListGuardians(ctx context.Context, recordID string) ([]domain.Guardian, error) {
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return nil, err
	}
	return s.guardianRepo.ListByRecord(ctx, recordID)
}

func (s *service) AddMentor(ctx context.Context, recordID string, req domain.AddMentorRequest) (*domain.Mentor, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return nil, err
	}
	if req.MentorRecordID != nil {
		if _, err := s.repo.Get(ctx, *req.MentorRecordID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("mentor record %s: %w", *req.MentorRecordID, domain.ErrBadRequest)
			}
			return nil, err
		}
	}
	m := &domain.Mentor{
		MentorID:       id.New(),
		RecordID:       recordID,
		MentorName:     req.MentorName,
		MentorRecordID: req.MentorRecordID,
	}
	if err := s.mentorRepo.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) ListMentors(ctx context.Context, recordID string) ([]domain.Mentor, error) {
	if _, err := s.repo.Get(ctx, recordID); err != nil {
		return nil, err
	}
	return s.mentorRepo.ListByRecord(ctx, recordID)
}
