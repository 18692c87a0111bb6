package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maxschool-bot/internal/domain"
)

// --- mocks ---

type mockRecordStore struct{ mock.Mock }

func (m *mockRecordStore) Put(ctx context.Context, rec *domain.DirectoryRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *mockRecordStore) Get(ctx context.Context, recordID string) (*domain.DirectoryRecord, error) {
	args := m.Called(ctx, recordID)
	if r, _ := args.Get(0).(*domain.DirectoryRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRecordStore) GetByPhone(ctx context.Context, rawPhone string) (*domain.DirectoryRecord, error) {
	args := m.Called(ctx, rawPhone)
	if r, _ := args.Get(0).(*domain.DirectoryRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRecordStore) GetBySchoolID(ctx context.Context, schoolID string) (*domain.DirectoryRecord, error) {
	args := m.Called(ctx, schoolID)
	if r, _ := args.Get(0).(*domain.DirectoryRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRecordStore) Update(ctx context.Context, recordID string, updates map[string]interface{}) error {
	return m.Called(ctx, recordID, updates).Error(0)
}
func (m *mockRecordStore) Delete(ctx context.Context, recordID string) error {
	return m.Called(ctx, recordID).Error(0)
}
func (m *mockRecordStore) ScanPage(ctx context.Context, limit int32, cursor, role, group string) ([]domain.DirectoryRecord, string, error) {
	args := m.Called(ctx, limit, cursor, role, group)
	return args.Get(0).([]domain.DirectoryRecord), args.String(1), args.Error(2)
}

type mockGuardianStore struct{ mock.Mock }

func (m *mockGuardianStore) Put(ctx context.Context, g *domain.Guardian) error {
	return m.Called(ctx, g).Error(0)
}
func (m *mockGuardianStore) ListByRecord(ctx context.Context, recordID string) ([]domain.Guardian, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).([]domain.Guardian), args.Error(1)
}
func (m *mockGuardianStore) DeleteByRecord(ctx context.Context, recordID string) error {
	return m.Called(ctx, recordID).Error(0)
}

type mockMentorStore struct{ mock.Mock }

func (m *mockMentorStore) Put(ctx context.Context, mt *domain.Mentor) error {
	return m.Called(ctx, mt).Error(0)
}
func (m *mockMentorStore) ListByRecord(ctx context.Context, recordID string) ([]domain.Mentor, error) {
	args := m.Called(ctx, recordID)
	return args.Get(0).([]domain.Mentor), args.Error(1)
}
func (m *mockMentorStore) DeleteByRecord(ctx context.Context, recordID string) error {
	return m.Called(ctx, recordID).Error(0)
}

// --- helpers ---

func ptr[T any](v T) *T { return &v }

func newTestService(rs *mockRecordStore, gs *mockGuardianStore, ms *mockMentorStore) Service {
	return NewService(ServiceDeps{RecordRepo: rs, GuardianRepo: gs, MentorRepo: ms})
}

func baseReq() domain.CreateRecordRequest {
	return domain.CreateRecordRequest{
		Phone:    ptr("+7 (999) 123-45-67"),
		Email:    ptr("ivan@school.example"),
		FullName: "Ivan Petrov",
		Role:     domain.RoleStudent,
	}
}

// --- Create ---

func TestCreate_HappyPath_NormalizesPhone(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("GetByPhone", mock.Anything, "79991234567").Return(nil, domain.ErrNotFound)
	rs.On("Put", mock.Anything, mock.AnythingOfType("*domain.DirectoryRecord")).Return(nil)

	svc := newTestService(rs, nil, nil)
	rec, err := svc.Create(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "79991234567", *rec.Phone)
	assert.NotEmpty(t, rec.RecordID)
	assert.Nil(t, rec.PlatformID)
	rs.AssertExpectations(t)
}

func TestCreate_MissingFullName(t *testing.T) {
	svc := newTestService(&mockRecordStore{}, nil, nil)
	req := baseReq()
	req.FullName = ""
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_InvalidRole(t *testing.T) {
	svc := newTestService(&mockRecordStore{}, nil, nil)
	req := baseReq()
	req.Role = "principal"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCreate_PhoneConflict(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("GetByPhone", mock.Anything, "79991234567").Return(&domain.DirectoryRecord{RecordID: "r9"}, nil)

	svc := newTestService(rs, nil, nil)
	_, err := svc.Create(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreate_SchoolIDConflict(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("GetByPhone", mock.Anything, "79991234567").Return(nil, domain.ErrNotFound)
	rs.On("GetBySchoolID", mock.Anything, "s-42").Return(&domain.DirectoryRecord{RecordID: "r9"}, nil)

	svc := newTestService(rs, nil, nil)
	req := baseReq()
	req.SchoolID = ptr("s-42")
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// --- Update ---

func TestUpdate_EmptyRequest_ReturnsExisting(t *testing.T) {
	rs := &mockRecordStore{}
	existing := &domain.DirectoryRecord{RecordID: "r1", FullName: "Ivan Petrov"}
	rs.On("Get", mock.Anything, "r1").Return(existing, nil)

	svc := newTestService(rs, nil, nil)
	rec, err := svc.Update(context.Background(), "r1", domain.UpdateRecordRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, rec)
	rs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_PhoneTakenByOtherRecord(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("GetByPhone", mock.Anything, "79991234567").Return(&domain.DirectoryRecord{RecordID: "r2"}, nil)

	svc := newTestService(rs, nil, nil)
	_, err := svc.Update(context.Background(), "r1", domain.UpdateRecordRequest{
		Phone: ptr("+7 999 123-45-67"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_PhoneOwnedBySameRecord_Allowed(t *testing.T) {
	rs := &mockRecordStore{}
	updated := &domain.DirectoryRecord{RecordID: "r1", Phone: ptr("79991234567")}
	rs.On("GetByPhone", mock.Anything, "79991234567").Return(updated, nil)
	rs.On("Update", mock.Anything, "r1", map[string]interface{}{"phone": "79991234567"}).Return(nil)
	rs.On("Get", mock.Anything, "r1").Return(updated, nil)

	svc := newTestService(rs, nil, nil)
	rec, err := svc.Update(context.Background(), "r1", domain.UpdateRecordRequest{
		Phone: ptr("+7 999 123-45-67"),
	})

	require.NoError(t, err)
	assert.Equal(t, "79991234567", *rec.Phone)
	rs.AssertExpectations(t)
}

func TestUpdate_InvalidEmail(t *testing.T) {
	svc := newTestService(&mockRecordStore{}, nil, nil)
	_, err := svc.Update(context.Background(), "r1", domain.UpdateRecordRequest{
		Email: ptr("not-an-email"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Delete ---

func TestDelete_CascadesLinks(t *testing.T) {
	rs := &mockRecordStore{}
	gs := &mockGuardianStore{}
	ms := &mockMentorStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.DirectoryRecord{RecordID: "r1"}, nil)
	gs.On("DeleteByRecord", mock.Anything, "r1").Return(nil)
	ms.On("DeleteByRecord", mock.Anything, "r1").Return(nil)
	rs.On("Delete", mock.Anything, "r1").Return(nil)

	svc := newTestService(rs, gs, ms)
	require.NoError(t, svc.Delete(context.Background(), "r1"))
	gs.AssertExpectations(t)
	ms.AssertExpectations(t)
	rs.AssertExpectations(t)
}

func TestDelete_UnknownRecord(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := newTestService(rs, &mockGuardianStore{}, &mockMentorStore{})
	err := svc.Delete(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- List ---

func TestList_ClampsLimit(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("ScanPage", mock.Anything, int32(20), "", "student", "").
		Return([]domain.DirectoryRecord{{RecordID: "r1"}}, "next", nil)

	svc := newTestService(rs, nil, nil)
	recs, cursor, err := svc.List(context.Background(), 0, "", "student", "")

	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, "next", cursor)
}

// --- Guardians / mentors ---

func TestAddGuardian_DefaultsRelation(t *testing.T) {
	rs := &mockRecordStore{}
	gs := &mockGuardianStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.DirectoryRecord{RecordID: "r1"}, nil)
	gs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Guardian")).Return(nil)

	svc := newTestService(rs, gs, nil)
	g, err := svc.AddGuardian(context.Background(), "r1", domain.AddGuardianRequest{
		Name:  "Elena Petrova",
		Phone: ptr("+7 (903) 555-66-77"),
	})

	require.NoError(t, err)
	assert.Equal(t, "parent", g.Relation)
	assert.Equal(t, "79035556677", *g.Phone)
	assert.Equal(t, "r1", g.RecordID)
}

func TestAddGuardian_UnknownRecord(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := newTestService(rs, &mockGuardianStore{}, nil)
	_, err := svc.AddGuardian(context.Background(), "nope", domain.AddGuardianRequest{Name: "X"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAddMentor_UnknownMentorRecord(t *testing.T) {
	rs := &mockRecordStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.DirectoryRecord{RecordID: "r1"}, nil)
	rs.On("Get", mock.Anything, "m-unknown").Return(nil, domain.ErrNotFound)

	svc := newTestService(rs, nil, &mockMentorStore{})
	_, err := svc.AddMentor(context.Background(), "r1", domain.AddMentorRequest{
		MentorName:     "Olga Ivanova",
		MentorRecordID: ptr("m-unknown"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestAddMentor_HappyPath(t *testing.T) {
	rs := &mockRecordStore{}
	ms := &mockMentorStore{}
	rs.On("Get", mock.Anything, "r1").Return(&domain.DirectoryRecord{RecordID: "r1"}, nil)
	ms.On("Put", mock.Anything, mock.AnythingOfType("*domain.Mentor")).Return(nil)

	svc := newTestService(rs, nil, ms)
	m, err := svc.AddMentor(context.Background(), "r1", domain.AddMentorRequest{
		MentorName: "Olga Ivanova",
	})

	require.NoError(t, err)
	assert.Equal(t, "Olga Ivanova", m.MentorName)
	assert.NotEmpty(t, m.MentorID)
}
