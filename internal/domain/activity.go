package domain

import "time"

type ActivityType string

const (
	ActivitySearchStarted        ActivityType = "search_started"
	ActivityJobFound             ActivityType = "job_found"
	ActivityJobAnalyzed          ActivityType = "job_analyzed"
	ActivityApplicationStarted   ActivityType = "application_started"
	ActivityCoverLetterGenerated ActivityType = "cover_letter_generated"
	ActivityApplicationSubmitted ActivityType = "application_submitted"
	ActivityEmailSent            ActivityType = "email_sent"
	ActivityEmailReceived        ActivityType = "email_received"
	ActivityStatusUpdate         ActivityType = "status_update"
	ActivityInterviewScheduled   ActivityType = "interview_scheduled"
	ActivityError                ActivityType = "error"
	ActivityThinking             ActivityType = "thinking"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySearchStarted, ActivityJobFound, ActivityJobAnalyzed, ActivityApplicationStarted,
		ActivityCoverLetterGenerated, ActivityApplicationSubmitted, ActivityEmailSent,
		ActivityEmailReceived, ActivityStatusUpdate, ActivityInterviewScheduled,
		ActivityError, ActivityThinking:
		return true
	}
	return false
}

// ActivityLog запись журнала действий агента (только добавление)
type ActivityLog struct {
	ID        string                 `json:"id"`
	AgentID   string                 `json:"agentId"`
	Type      ActivityType           `json:"type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
