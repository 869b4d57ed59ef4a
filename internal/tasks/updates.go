package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a loader batch.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Loader running the batch
	Batch   string // Batch id
	Step    int    // Current record number
	Total   int    // Records in the batch
	Message string // Human-readable message for display
	Data    any    // Identifying key of the current record
}

// Phase names the loader a batch belongs to.
type Phase int

const (
	PhaseSingles Phase = iota
	PhaseAlbums
	PhaseUsers
	PhaseRatings
)

func (p Phase) String() string {
	switch p {
	case PhaseSingles:
		return "singles"
	case PhaseAlbums:
		return "albums"
	case PhaseUsers:
		return "users"
	case PhaseRatings:
		return "ratings"
	default:
		return ""
	}
}

func recordUpdate(b *batch, step int, key any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   b.phase,
		Batch:   b.id,
		Step:    step,
		Total:   b.records,
		Message: fmt.Sprintf("Loading %s %d/%d", b.phase, step, b.records),
		Data:    key,
	}
}
