package domain

import "time"

// Directory roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// DirectoryRecord is one school-affiliated person. Phone is stored
// digits-only. PlatformID stays nil until the messenger identity is bound
// through the registration flow; binding is one-way and only an administrator
// can clear it out-of-band.
type DirectoryRecord struct {
	RecordID   string    `json:"id" dynamodbav:"record_id"`
	SchoolID   *string   `json:"school_id,omitempty" dynamodbav:"school_id"`
	Phone      *string   `json:"phone,omitempty" dynamodbav:"phone"`
	Email      *string   `json:"email,omitempty" dynamodbav:"email"`
	FullName   string    `json:"full_name" dynamodbav:"full_name"`
	FirstName  string    `json:"first_name,omitempty" dynamodbav:"first_name"`
	LastName   string    `json:"last_name,omitempty" dynamodbav:"last_name"`
	Role       string    `json:"role" dynamodbav:"role"`
	GroupName  *string   `json:"group_name,omitempty" dynamodbav:"group_name"`
	PlatformID *string   `json:"platform_id,omitempty" dynamodbav:"platform_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Bound reports whether the record already has a messenger identity.
func (r *DirectoryRecord) Bound() bool {
	return r.PlatformID != nil && *r.PlatformID != ""
}

// EmailSet reports whether the record has an email to receive codes on.
func (r *DirectoryRecord) EmailSet() bool {
	return r.Email != nil && *r.Email != ""
}

type CreateRecordRequest struct {
	SchoolID  *string `json:"school_id"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  string  `json:"full_name" validate:"required"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role" validate:"required,oneof=student teacher parent admin"`
	GroupName *string `json:"group_name"`
}

type UpdateRecordRequest struct {
	SchoolID  *string `json:"school_id"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"full_name"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role" validate:"omitempty,oneof=student teacher parent admin"`
	GroupName *string `json:"group_name"`
}
