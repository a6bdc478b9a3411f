package models

import "time"

// RequestStatus tracks a document request through its workflow
type RequestStatus string

// Document request workflow statuses
const (
	StatusReceived  RequestStatus = "Received"
	StatusAccepted  RequestStatus = "Accepted"
	StatusPending   RequestStatus = "Pending"
	StatusFinalized RequestStatus = "Finalized"
)

// ValidStatus reports whether s is a known workflow status
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusReceived, StatusAccepted, StatusPending, StatusFinalized:
		return true
	}
	return false
}

// DocumentRequest represents a Transcript of Records request.
// An account holds at most one live request at a time.
type DocumentRequest struct {
	ID            int           `json:"id"`
	AccountID     string        `json:"accountId"`
	ApplicantName string        `json:"applicantName"`
	Status        RequestStatus `json:"status"`
	RequestedAt   time.Time     `json:"requestedAt"`
}

// UpdateStatusRequest is the body for a faculty status update
type UpdateStatusRequest struct {
	AccountID string        `json:"accountId"`
	Status    RequestStatus `json:"status"`
}

// RequestProgress is one tracked item in an account's progress view
type RequestProgress struct {
	ID          int           `json:"id"`
	AccountID   string        `json:"accountId"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"createdAt"`
	Type        string        `json:"type"`
}
