package common

// SyncStatus marks whether a local row still awaits a push.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
)

// LastSyncedAtKey is the config row holding the pull checkpoint. The row is
// written local-only (already "synced") so it is never pushed to the server.
const LastSyncedAtKey = "_lastSyncedAt"
