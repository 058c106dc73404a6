// Package models defines the core data structures shared by the
// verification client and the development backend.
package models

import "time"

// Status represents the backend-reported state of a verification job.
type Status string

const (
	// StatusPending means the job has been accepted but not picked up yet.
	StatusPending Status = "PENDING"
	// StatusProcessing means the job is being evaluated by the backend.
	StatusProcessing Status = "PROCESSING"
	// StatusApproved is the successful terminal outcome.
	StatusApproved Status = "APPROVED"
	// StatusRejected means the document or selfie was not accepted.
	StatusRejected Status = "REJECTED"
	// StatusFailed means verification failed due to invalid data or a
	// technical problem on the backend.
	StatusFailed Status = "FAILED"
	// StatusExpired means the verification attempt timed out server-side.
	StatusExpired Status = "EXPIRED"
	// StatusError is an unexpected backend error terminal outcome.
	StatusError Status = "ERROR"
)

// Terminal reports whether no further status change can occur.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusFailed, StatusExpired, StatusError:
		return true
	}
	return false
}

// DocumentFile is one uploaded document image.
type DocumentFile struct {
	// Name is the original filename, sent with the multipart part.
	Name string
	// MIME is the declared content type of the image.
	MIME string
	// Data is the raw image payload.
	Data []byte
}

// Size returns the payload size in bytes.
func (f DocumentFile) Size() int64 { return int64(len(f.Data)) }

// DocumentBundle holds the document images selected at the first wizard
// step. Front is mandatory, Back is optional. The bundle is created once
// and never mutated; a failure-driven reset discards it entirely.
type DocumentBundle struct {
	Front DocumentFile
	Back  *DocumentFile
}

// VerificationJob is a backend-tracked verification request.
type VerificationJob struct {
	// ID is the opaque identifier assigned by the backend.
	ID string `json:"verificationId"`
	// Status is the last known job status.
	Status Status `json:"status"`
}

// AccountRecord holds the account returned by the backend after account
// creation. Kept only for final display.
type AccountRecord struct {
	Email string `json:"email"`
}

// JobRecord is the backend-side view of a verification job. Document
// payloads are not persisted by the dev backend; names and sizes are
// enough to simulate processing.
type JobRecord struct {
	ID            string
	Status        Status
	Outcome       Status
	DocumentFront string
	DocumentBack  string
	SelfieSize    int64
	CreatedAt     time.Time
}
