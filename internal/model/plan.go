package model

import "time"

// PlanItemAction is the reorganization action to apply to one group member.
type PlanItemAction string

const (
	ActionMove PlanItemAction = "move"
	ActionCopy PlanItemAction = "copy"
	ActionLink PlanItemAction = "link"
	ActionSkip PlanItemAction = "skip"
)

// ConflictPolicy governs what happens when a destination path already exists.
type ConflictPolicy string

const (
	ConflictSkip      ConflictPolicy = "skip"
	ConflictOverwrite ConflictPolicy = "overwrite"
	ConflictSuffix    ConflictPolicy = "suffix"
)

// PlanItem is one proposed filesystem operation.
type PlanItem struct {
	SourcePath     string
	DestPath       string
	Action         PlanItemAction
	ConflictPolicy ConflictPolicy
	Reason         string
	Metadata       *EnrichedMetadata // the source group's enrichment result, if any
}

// Plan is the full set of proposed operations for a run, produced by the
// organizer before any filesystem mutation happens.
type Plan struct {
	ID        string
	RunID     string
	CreatedAt time.Time
	DryRun    bool
	Items     []PlanItem
}

// JournalEntryKind distinguishes the phase of an operation recorded in the journal.
type JournalEntryKind string

const (
	JournalIntent  JournalEntryKind = "intent"
	JournalOutcome JournalEntryKind = "outcome"
)

// JournalEntry is one append-only record in the organizer's WAL-style journal,
// used to make a partially-applied plan resumable and reversible.
type JournalEntry struct {
	Sequence  int64
	RunID     string
	PlanID    string
	Kind      JournalEntryKind
	Item      PlanItem
	Success   bool
	Err       string
	Timestamp time.Time
}
