package api

import (
	"encoding/json"
	"strings"
	"time"
)

// JobStatus is the backend-owned lifecycle state of a fill job.
// Transitions are monotonic: pending -> filling -> {completed, failed}.
// The client never writes a status; it only observes snapshots.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusFilling   JobStatus = "filling"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final for the job.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// FlexID tolerates backends that serialize ids as either JSON strings or
// numbers (the Mongo deployment uses string _id, older ones used integers).
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }

// TokenResponse is returned by both signup and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      FlexID `json:"user_id"`
	Username    string `json:"username"`
}

// UserRecord is the authenticated user as reported by /api/auth/me.
type UserRecord struct {
	ID         FlexID `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	HasProfile bool   `json:"has_profile"`
}

// Profile holds the stored answers used for form filling. All fields are
// optional free text; ExtraFields carries anything outside the fixed set.
type Profile struct {
	ID             FlexID            `json:"id,omitempty"`
	UserID         FlexID            `json:"user_id,omitempty"`
	FullName       string            `json:"full_name"`
	RegisterNumber string            `json:"register_number"`
	Department     string            `json:"department"`
	Year           string            `json:"year"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Gender         string            `json:"gender"`
	CollegeName    string            `json:"college_name"`
	Address        string            `json:"address"`
	Skills         string            `json:"skills"`
	Interests      string            `json:"interests"`
	Bio            string            `json:"bio"`
	ExtraFields    map[string]string `json:"extra_fields"`
	CreatedAt      *time.Time        `json:"created_at,omitempty"`
	UpdatedAt      *time.Time        `json:"updated_at,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field. This is the only client-side normalization applied to profiles.
func (p Profile) Trimmed() Profile {
	out := p
	out.FullName = strings.TrimSpace(p.FullName)
	out.RegisterNumber = strings.TrimSpace(p.RegisterNumber)
	out.Department = strings.TrimSpace(p.Department)
	out.Year = strings.TrimSpace(p.Year)
	out.Email = strings.TrimSpace(p.Email)
	out.Phone = strings.TrimSpace(p.Phone)
	out.Gender = strings.TrimSpace(p.Gender)
	out.CollegeName = strings.TrimSpace(p.CollegeName)
	out.Address = strings.TrimSpace(p.Address)
	out.Skills = strings.TrimSpace(p.Skills)
	out.Interests = strings.TrimSpace(p.Interests)
	out.Bio = strings.TrimSpace(p.Bio)
	if p.ExtraFields != nil {
		out.ExtraFields = make(map[string]string, len(p.ExtraFields))
		for k, v := range p.ExtraFields {
			out.ExtraFields[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

// FillLogEntry records one per-question decision made by the backend
// automation, tagged with where the answer came from.
type FillLogEntry struct {
	Question  string `json:"question"`
	FieldType string `json:"field_type"`
	Answer    string `json:"answer"`
	Source    string `json:"source"` // profile, ai, learned, fallback, ...
	Status    string `json:"status"`
}

// JobSnapshot is a point-in-time read of a fill job.
type JobSnapshot struct {
	ID                FlexID         `json:"id"`
	FormURL           string         `json:"form_url"`
	FormTitle         string         `json:"form_title"`
	Status            JobStatus      `json:"status"`
	QuestionsDetected int            `json:"questions_detected"`
	QuestionsFilled   int            `json:"questions_filled"`
	AIAnswersUsed     int            `json:"ai_answers_used"`
	AutoSubmitted     bool           `json:"auto_submitted"`
	ErrorMessage      string         `json:"error_message"`
	FillLog           []FillLogEntry `json:"fill_log"`
	CreatedAt         *time.Time     `json:"created_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}

// HistoryPage is one page of past fill jobs, newest first per the backend.
type HistoryPage struct {
	Items []JobSnapshot `json:"items"`
	Total int           `json:"total"`
}

// Mapping is a learned question-to-profile-field association persisted
// server-side for reuse on future forms.
type Mapping struct {
	ID           FlexID `json:"id"`
	QuestionText string `json:"question_text"`
	MatchedField string `json:"matched_field"`
	AnswerValue  string `json:"answer_value"`
	Confidence   int    `json:"confidence"`
	TimesUsed    int    `json:"times_used"`
}
