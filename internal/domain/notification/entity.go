package notification

import (
	"time"
)

// RuleID identifies one scheduler rule.
type RuleID string

const (
	RuleDailySummary    RuleID = "daily_summary"
	RuleCheckInReminder RuleID = "checkin_reminder"
	RuleMissedCheckout  RuleID = "missed_checkout"
	RuleLateAlert       RuleID = "late_alert"
	RuleKeepAlive       RuleID = "keep_alive"
	RuleExpiredPending  RuleID = "expired_pending"
)

// Record is the idempotency marker for one dispatched notification.
// The (rule, subject, date) triple is unique: a rule can fire at most
// once per subject per day, no matter how often its trigger window is
// re-evaluated. Repeating rules fold their slot into the subject.
type Record struct {
	ID        string
	RuleID    RuleID
	SubjectID string
	Date      string // YYYY-MM-DD in the application timezone
	Message   string
	SentAt    time.Time
}
