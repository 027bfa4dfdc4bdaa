package idempotency

import (
	"net/http"
	"strings"
)

// Header carries the client-supplied deduplication key for order
// creation.
const Header = "Idempotency-Key"

// Key extracts the trimmed idempotency key, or "" when absent.
func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}
