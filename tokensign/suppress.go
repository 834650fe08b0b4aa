package tokensign

import (
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// verifyFailureLog rate-limits the "signature mismatch" diagnostic to once
// per 30 seconds, matching the original's suppressFor(30) on the
// TokenVerifyKeySignature/InvalidSignature path: a bad signature is expected
// under normal operation (expired clients, rotated keys) and must not flood
// logs when many verifications fail at once.
var verifyFailureLog = newSuppressedLogger(30 * time.Second)

type suppressedLogger struct {
	mu       sync.Mutex
	sometime rate.Sometimes
}

func newSuppressedLogger(window time.Duration) *suppressedLogger {
	return &suppressedLogger{sometime: rate.Sometimes{Interval: window}}
}

func (s *suppressedLogger) logf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sometime.Do(func() {
		log.Printf(format, args...)
	})
}
