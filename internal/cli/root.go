// Package cli holds the habitbot command implementations wired by kong.
package cli

import (
	"fmt"
	"time"

	"github.com/akozlov/habitbot/internal/storage"
)

// Context carries the resolved configuration and store into each command.
type Context struct {
	Store    storage.Provider
	Token    string
	Timezone string
	Debug    bool
}

// LoadLocation resolves the configured IANA timezone name; "Local" or empty
// means the system timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}
