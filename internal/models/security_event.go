package models

import "time"

// Records a request denied by the security gate so denials can be
// audited from the admin surface. The HTTP response never carries the
// reason; this table is the only place it is visible.
type SecurityEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	ClientIP  string    `gorm:"index" json:"client_ip"`
	Reason    string    `gorm:"index" json:"reason"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}
