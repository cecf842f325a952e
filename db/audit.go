package db

import "time"

// Interaction is one authenticated exchange with the assistant, recorded for
// admin statistics. ID is a UUID assigned by the recorder.
type Interaction struct {
	ID             string
	ExternalID     string
	Query          string
	Response       string
	ResponseTimeMs int64
	Created        time.Time
}

// Stats is the admin summary projection.
type Stats struct {
	IdentitiesByStatus map[Status]int64
	Interactions       int64
}

// DbAudit is the store contract of the interaction recorder.
type DbAudit interface {
	InsertInteraction(it Interaction) error
	GetStats() (*Stats, error)
}
