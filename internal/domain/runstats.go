package domain

// DiscoveryRunStat is one per-provider row of a finished aggregation run,
// archived for analytics. Corresponds to discovery_run_stats table in
// ClickHouse.
type DiscoveryRunStat struct {
	RunID      string
	UserID     string
	Source     Source
	Requests   int64
	Failures   int64
	Events     int64
	StartedAt  int64 // Unix timestamp in milliseconds
	FinishedAt int64 // Unix timestamp in milliseconds
}
