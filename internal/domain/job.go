package domain

// Geo bounds a provider search to an area around a city.
type Geo struct {
	City        string
	StateCode   string
	RadiusMiles int
}

// SourceTally counts per-provider activity within one aggregation run.
type SourceTally struct {
	Requests int64 // provider calls issued
	Failures int64 // calls that returned a provider error
	Events   int64 // canonical events parsed
}

// SearchJob is the in-flight state of one aggregation run. It is ephemeral:
// created when a user triggers discovery, discarded when the run completes or
// is abandoned. Events is appended to only at the batch join point, so no
// locking is needed while batches run sequentially.
type SearchJob struct {
	UserID          string
	Artists         []string
	Geo             Geo
	ArtistsSearched int // monotonically increasing, updated per batch
	Events          []*CanonicalEvent
	Tallies         map[Source]*SourceTally
}

// NewSearchJob creates the run state for one discovery request.
func NewSearchJob(userID string, artists []string, geo Geo) *SearchJob {
	return &SearchJob{
		UserID:  userID,
		Artists: artists,
		Geo:     geo,
		Tallies: make(map[Source]*SourceTally),
	}
}

// Tally returns the counter set for a source, creating it on first use.
func (j *SearchJob) Tally(source Source) *SourceTally {
	t, ok := j.Tallies[source]
	if !ok {
		t = &SourceTally{}
		j.Tallies[source] = t
	}
	return t
}
