// Package audit provides a pluggable event log for the cipher core.
//
// The crypto core itself never decides whether auditing is enabled or where
// events go; it only calls Logger.Log with the outcome of an operation. This
// mirrors the separation between the KeyCache/Encryptor/Decryptor (mechanism)
// and the audit backend (policy) the teacher vault applies to secret access.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config defines audit logging configuration.
type Config struct {
	Enabled  bool                   `json:"enabled"`
	Type     ConfigType             `json:"type"`    // "file", "syslog", ""
	Options  map[string]interface{} `json:"options"` // provider-specific options
	LogLevel string                 `json:"log_level,omitempty"`
}

type ConfigType string

const (
	FileAuditType   ConfigType = "file"
	SyslogAuditType ConfigType = "syslog"
	NoOp            ConfigType = ""
)

// Logger is the pluggable audit sink. KeyCache calls it after every key
// admission and cleanup; Encryptor and Decryptor do not log to it.
type Logger interface {
	Log(action string, success bool, metadata map[string]interface{}) error
	Query(options QueryOptions) (QueryResult, error)
	Close() error
}

// Event represents a single audited cipher-core operation.
type Event struct {
	ID        string                 `json:"id"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	DomainID  int64                  `json:"domain_id,omitempty"`
	KeyID     uint64                 `json:"base_cipher_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Source    string                 `json:"source,omitempty"`
	Duration  int64                  `json:"duration_ms,omitempty"`
}

// QueryOptions filters a Query call.
type QueryOptions struct {
	Since    *time.Time
	Until    *time.Time
	Action   string
	Success  *bool // nil = all, true = only success, false = only failures
	DomainID *int64
	Limit    int
	Offset   int
}

// QueryResult contains the results of an audit query.
type QueryResult struct {
	Events     []Event `json:"events"`
	TotalCount int     `json:"total_count"`
	Filtered   int     `json:"filtered"`
	HasMore    bool    `json:"has_more"`
}

// NewLogger constructs the Logger implied by config. A nil or disabled config
// yields a no-op logger, so callers never need to nil-check before logging.
func NewLogger(config *Config) (Logger, error) {
	if config == nil || !config.Enabled {
		return &NoOpLogger{}, nil
	}

	switch config.Type {
	case FileAuditType:
		return NewFileLogger(config)
	case SyslogAuditType:
		return NewSyslogLogger(config)
	case NoOp:
		return &NoOpLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown audit provider: %s", config.Type)
	}
}

// domainAndKeyFromMetadata pulls the domain_id/base_cipher_id pair out of a
// Log call's metadata, if present, so callers get them back as the typed
// Event.DomainID/Event.KeyID fields instead of only inside the free-form
// Metadata map. KeyCache supplies both as int64/uint64 on key admissions,
// only domain_id on ResetDomain, and neither on Cleanup; a metadata map
// lacking either key (or holding some other type) just leaves the
// corresponding field at its zero value.
func domainAndKeyFromMetadata(metadata map[string]interface{}) (domainID int64, keyID uint64) {
	if v, ok := metadata["domain_id"].(int64); ok {
		domainID = v
	}
	if v, ok := metadata["base_cipher_id"].(uint64); ok {
		keyID = v
	}
	return domainID, keyID
}

// parseOptions converts a generic options map into a specific options struct.
func parseOptions(options map[string]interface{}, target interface{}) error {
	if len(options) == 0 {
		return nil
	}

	jsonData, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	if err = json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal options: %w", err)
	}

	return nil
}
