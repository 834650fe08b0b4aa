package blobcipher

import "github.com/southwinds-io/blobcipher/audit"

// Config governs process-wide defaults for the cipher core. The core itself
// takes no file-based configuration — only the audit backend is
// configurable, and only because auditing is an ambient concern that
// belongs to the operator, not the cipher logic.
type Config struct {
	Audit audit.Config `json:"audit"`
}

// Init applies cfg to the process-wide KeyCache singleton. It should be
// called once, before any other package-level function observes the
// singleton; calling it again replaces the singleton with a fresh, empty
// cache wired to the new audit backend.
func Init(cfg Config) (*KeyCache, error) {
	return Configure(&cfg.Audit)
}
