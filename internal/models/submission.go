package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission types accepted by the gateway.
const (
	TypeResidentialQuote = "residential-quote"
	TypeCommercialQuote  = "commercial-quote"
	TypeAirbnbQuote      = "airbnb-quote"
	TypeJobApplication   = "job-application"
	TypeFeedback         = "feedback"
)

// Submission lifecycle statuses, driven by admin actions.
const (
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusCompleted = "completed"
)

var referencePrefixes = map[string]string{
	TypeResidentialQuote: "RQ",
	TypeCommercialQuote:  "CQ",
	TypeAirbnbQuote:      "AQ",
	TypeJobApplication:   "JA",
	TypeFeedback:         "FB",
}

func IsValidType(t string) bool {
	_, ok := referencePrefixes[t]
	return ok
}

// JSONMap stores an arbitrary JSON object in a single column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}

	return json.Unmarshal(data, m)
}

// Represents a validated, sanitized customer submission
type Submission struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Reference   string    `gorm:"uniqueIndex;not null" json:"reference"`
	Type        string    `gorm:"index;not null" json:"type"`
	Status      string    `gorm:"index;default:'submitted'" json:"status"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Payload     JSONMap   `gorm:"type:jsonb" json:"payload"`
	SourceIP    string    `json:"source_ip"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// The reference is assigned exactly once, here, and is stable afterwards.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Reference == "" {
		prefix, ok := referencePrefixes[s.Type]
		if !ok {
			prefix = "SB"
		}
		short := strings.ToUpper(strings.ReplaceAll(s.ID.String(), "-", "")[:8])
		s.Reference = prefix + "-" + short
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	return nil
}

func (Submission) TableName() string {
	return "submissions"
}
