package domain

// AttendanceStatus marks a user's plan for a discovered concert.
type AttendanceStatus string

const (
	AttendanceGoing      AttendanceStatus = "going"
	AttendanceInterested AttendanceStatus = "interested"
)

// String returns the string representation of AttendanceStatus.
func (s AttendanceStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s AttendanceStatus) IsValid() bool {
	return s == AttendanceGoing || s == AttendanceInterested
}

// Attendance records a user's watchlist entry for one event.
// Corresponds to concert_attendance table in PostgreSQL.
type Attendance struct {
	UserID          string
	ProviderEventID string
	Status          AttendanceStatus
	UpdatedAt       int64 // record update timestamp (ms)
}
