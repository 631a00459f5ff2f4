package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks ids minted locally for rows the backend has not seen.
const TempIDPrefix = "temp_"

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// NewTempID returns a fresh, process-unique temporary id.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was minted by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// IsObjectID reports whether id looks like a backend object id
// (24 hex characters).
func IsObjectID(id string) bool {
	return objectIDPattern.MatchString(id)
}
