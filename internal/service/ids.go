package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// idAttempts bounds regeneration when a generated id collides
const idAttempts = 5

// newID returns prefix-xxxxxxxxxxxx with 12 hex characters from a random UUID
func newID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + hex[:12]
}

// timeNow is replaced in tests
var timeNow = time.Now

func nowMillis() int64 {
	return timeNow().UnixMilli()
}
