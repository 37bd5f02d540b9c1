package domain

// ProgressFunc reports download progress to TUI.
// Called repeatedly during pagination: (50, 500), (100, 500), ...
type ProgressFunc func(loaded, total int)

// SyncResult summarizes what happened during a catalog sync.
type SyncResult struct {
	FromCache bool // true if served from the local store without a fetch
	Count     int  // total tracks after sync
}
