package domain

// Source represents the event-listing provider that produced a record.
type Source string

const (
	SourceTicketmaster Source = "ticketmaster"
	SourceSeatGeek     Source = "seatgeek"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s Source) IsValid() bool {
	return s == SourceTicketmaster || s == SourceSeatGeek
}
