package domain

// Guardian is a parent or legal guardian attached to a directory record.
// Guardians are deleted together with their record.
type Guardian struct {
	GuardianID string  `json:"id" dynamodbav:"guardian_id"`
	RecordID   string  `json:"record_id" dynamodbav:"record_id"`
	Name       string  `json:"name" dynamodbav:"name"`
	Phone      *string `json:"phone,omitempty" dynamodbav:"phone"`
	Email      *string `json:"email,omitempty" dynamodbav:"email"`
	Relation   string  `json:"relation" dynamodbav:"relation"` // "parent" | "guardian"
}

// Mentor links a directory record to its class mentor. MentorRecordID points
// at the mentor's own directory record when one exists.
type Mentor struct {
	MentorID       string  `json:"id" dynamodbav:"mentor_id"`
	RecordID       string  `json:"record_id" dynamodbav:"record_id"`
	MentorName     string  `json:"mentor_name" dynamodbav:"mentor_name"`
	MentorRecordID *string `json:"mentor_record_id,omitempty" dynamodbav:"mentor_record_id"`
}

type AddGuardianRequest struct {
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Relation string  `json:"relation" validate:"omitempty,oneof=parent guardian"`
}

type AddMentorRequest struct {
	MentorName     string  `json:"mentor_name" validate:"required"`
	MentorRecordID *string `json:"mentor_record_id"`
}
