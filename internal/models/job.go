package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a geocoding job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Sex is the optional sex attribute carried from the uploaded row to the customer record.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Job represents one submitted address awaiting or having undergone geocoding.
type Job struct {
	ID        uuid.UUID // ID is assigned at creation.
	UserID    string    // UserID is the owner of the job.
	Address   string    // Address is the trimmed free-text input.
	Birth     *string   // Birth is a YYYY-MM-DD date or nil.
	Sex       *Sex      // Sex is nil when the input was absent or unrecognized.
	Status    Status    // Status is the current lifecycle state.
	Attempts  int       // Attempts is incremented once per successful claim.
	LastError *string   // LastError is set only when the job failed.
	CreatedAt time.Time // CreatedAt is immutable and orders claim selection.
	UpdatedAt time.Time // UpdatedAt changes on every transition.
}

// Row is a normalized upload row ready to be stored as a queued job.
type Row struct {
	Address string
	Birth   *string
	Sex     *Sex
}
