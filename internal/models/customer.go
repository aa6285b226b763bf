package models

import "github.com/google/uuid"

// Customer is the resolved record written once for every job that reaches done.
type Customer struct {
	JobID   uuid.UUID // JobID links the record to the job that produced it.
	UserID  string    // UserID always matches the job owner.
	Address string    // Address is the provider's display name, not the raw input.
	Birth   *string   // Birth is copied from the job.
	Sex     Sex       // Sex falls back to male when the job carries none.
	Lat     float64
	Lng     float64
}
