package codec

// ScanMessage is emitted by the scan agent, one per inode observed on the
// walked filesystem.
type ScanMessage struct {
	Type        string // "f" (file) or "d" (directory)
	Path        string
	Atime       uint64 // seconds since Unix epoch
	Mtime       uint64
	Size        uint64
	UID         uint64
	GID         uint64
	Filesys     string
	OSTPool     string
	StripeCount uint64
	FID         string
}

// RecorderMessage has the same shape as ScanMessage (§3) but is kept as
// its own type: it travels on a different stream and is consumed by a
// different agent, so conflating the two would blur the message-kind
// tagging the rest of the codec relies on.
type RecorderMessage struct {
	Type        string
	Path        string
	Atime       uint64
	Mtime       uint64
	Size        uint64
	UID         uint64
	GID         uint64
	Filesys     string
	OSTPool     string
	StripeCount uint64
	FID         string
}

// PurgeMessage names a path the purge agent should remove.
type PurgeMessage struct {
	Path string
}

// MigrationMessage names a path the migration agent should move between
// storage pools.
type MigrationMessage struct {
	Path string
}
