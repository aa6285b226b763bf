package models

import "time"

// Location represents the first candidate returned by a geocoding provider.
type Location struct {
	Latitude    float64 // Latitude of the geographical point.
	Longitude   float64 // Longitude of the geographical point.
	DisplayName string  // DisplayName is the provider's formatted address.
}

// Period is the half-open calendar-month window [Start, Next).
type Period struct {
	Start time.Time
	Next  time.Time
}

// Usage describes a user's monthly job quota at a point in time.
type Usage struct {
	Limit     int
	Used      int
	Remaining int
	Period    Period
}
