package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier for auction, bid and user records
func GenerateID() string {
	return uuid.NewString()
}
