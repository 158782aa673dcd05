package models

// Counter is the persisted state of one named sequence: Seq holds the last
// issued value and never decreases.
type Counter struct {
	ID  string `json:"id"`
	Seq int64  `json:"seq"`
}

// Counter keys initialized at startup. User-ID counters are keyed per year
// ("userId-2026") and created lazily on first registration of that year.
const (
	CounterReportID    = "reportId"
	CounterEmergencyID = "emergencyId"
)
