package blobcipher

import (
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// suppressedLogger rate-limits a diagnostic to at most once per window,
// mirroring the FDB original's TraceEvent::suppressFor. The crypto core
// hits this on CryptoBackend failures (60s window). tokenVerifyFailureLog
// (30s window) is declared here but has no caller: signed-token
// verification failures are rate-limited by tokensign's own copy of this
// type. Both are expected, recoverable conditions that would otherwise
// flood logs under sustained attack or misconfiguration.
type suppressedLogger struct {
	mu       sync.Mutex
	sometime rate.Sometimes
}

func newSuppressedLogger(window time.Duration) *suppressedLogger {
	return &suppressedLogger{
		sometime: rate.Sometimes{Interval: window},
	}
}

func (s *suppressedLogger) logf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sometime.Do(func() {
		log.Printf(format, args...)
	})
}

var (
	cryptoBackendLog      = newSuppressedLogger(60 * time.Second)
	tokenVerifyFailureLog = newSuppressedLogger(30 * time.Second)
)
