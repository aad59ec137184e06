package storage

import "time"

// Community represents a subreddit in the exported graph
type Community struct {
	CommunityID    int
	Name           string
	Visited        bool
	ReferenceCount int
	CreatedAt      time.Time
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	Iterations          int       `json:"iterations"`
	CommunitiesFetched  int       `json:"communities_fetched"`
	AccessFailures      int       `json:"access_failures"`
	ReferencesFound     int       `json:"references_found"`
	CommunitiesEnqueued int       `json:"communities_enqueued"`
	Visited             int       `json:"visited"`
	Pending             int       `json:"pending"`
	CheckpointsWritten  int       `json:"checkpoints_written"`
	TotalFetchTimeMs    int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs      int64     `json:"avg_fetch_time_ms"`
	TerminationReason   string    `json:"termination_reason"`
}
