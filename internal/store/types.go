package store

import "github.com/davialcantara/selah/internal/status"

// Verse is one cached verse record, denormalized from its parent chapter at
// write time. Verse rows never outlive a re-cache of the chapter.
type Verse struct {
	Translation string
	Book        string
	Chapter     int
	Number      int
	Text        string
	CachedAt    int64
}

// Chapter is one cached chapter with its verses in ascending order.
type Chapter struct {
	Translation string
	Book        string
	Number      int
	Verses      []Verse
	CachedAt    int64
}

// DownloadMeta tracks bulk download progress for one translation.
// ProcessedUnits never decreases within a run.
type DownloadMeta struct {
	Translation    string
	TotalUnits     int
	ProcessedUnits int
	FailedUnits    int
	FullyCached    bool
	LastUpdated    int64
}

// OutboxEntry is one pending outbound message. ClientMsgID is the
// caller-generated idempotency key, stable across retries.
type OutboxEntry struct {
	ID            int64
	ClientMsgID   string
	SenderID      string
	Body          string
	AttachmentRef string
	Status        status.Status
	ErrorMessage  string
	CreatedAt     int64
	UpdatedAt     int64
}

// VerseResult holds a verse matched by full-text search with a snippet.
type VerseResult struct {
	Verse   Verse
	Snippet string
}
