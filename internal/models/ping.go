package models

// LocationPing represents a single point of a user's location history.
// Timestamp is the server-ingestion time; LocalTimestamp is the device-local
// time and LocalDate ("YYYY-MM-DD", derived from it at ingest) is authoritative
// for deciding which calendar day a ping belongs to.
type LocationPing struct {
	ID        int64  `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	Timestamp int64  `json:"timestamp" db:"timestamp"` // Unix timestamp

	LocalTimestamp int64  `json:"local_timestamp" db:"local_timestamp"` // Unix timestamp, device-local clock
	LocalDate      string `json:"local_date" db:"local_date"`           // YYYY-MM-DD

	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// IsCheckin marks a user-invoked ping rather than a background sample
	IsCheckin bool `json:"is_checkin" db:"is_checkin"`
}

// DateRange filters pings by local calendar date; empty bounds mean unbounded
type DateRange struct {
	From string `json:"from,omitempty" form:"from"` // YYYY-MM-DD inclusive
	To   string `json:"to,omitempty" form:"to"`     // YYYY-MM-DD inclusive
}

// IsZero reports whether no bound is set
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}
