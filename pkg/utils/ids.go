package utils

import "github.com/google/uuid"

// GenID returns a fresh identifier for entities the caller did not name.
func GenID() string {
	return uuid.NewString()
}
