package domain

import (
	"errors"
	"time"
)

type ApplicationStatus string

const (
	AppApplied            ApplicationStatus = "applied"
	AppViewed             ApplicationStatus = "viewed"
	AppInReview           ApplicationStatus = "in_review"
	AppInterviewScheduled ApplicationStatus = "interview_scheduled"
	AppInterviewed        ApplicationStatus = "interviewed"
	AppOfferReceived      ApplicationStatus = "offer_received"
	AppRejected           ApplicationStatus = "rejected"
	AppWithdrawn          ApplicationStatus = "withdrawn"
	AppNoResponse         ApplicationStatus = "no_response"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
)

// Valid проверяет, что статус входит в перечисление из девяти значений
func (s ApplicationStatus) Valid() bool {
	switch s {
	case AppApplied, AppViewed, AppInReview, AppInterviewScheduled, AppInterviewed,
		AppOfferReceived, AppRejected, AppWithdrawn, AppNoResponse:
		return true
	}
	return false
}

// Application отклик агента на вакансию. Создается один раз, дальше меняется только статус.
type Application struct {
	ID              string            `json:"id"`
	AgentID         string            `json:"agentId"`
	JobID           string            `json:"jobId"`
	Job             JobListing        `json:"job"`
	Status          ApplicationStatus `json:"status"`
	CoverLetter     string            `json:"coverLetter,omitempty"`
	AppliedAt       time.Time         `json:"appliedAt"`
	ResponseAt      *time.Time        `json:"responseAt,omitempty"`
	ResponseMessage string            `json:"responseMessage,omitempty"`
	InterviewDate   *time.Time        `json:"interviewDate,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// ApplyStatus переводит отклик в новый статус и фиксирует момент ответа
func (a *Application) ApplyStatus(next ApplicationStatus, responseMessage string, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	a.Status = next
	a.ResponseAt = &now
	if responseMessage != "" {
		a.ResponseMessage = responseMessage
	}
	return nil
}
