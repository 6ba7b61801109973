// Package machineid handles the 128-bit machine identity written to
// /etc/machine-id.
package machineid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is a 128-bit machine identity. The zero value means "not set".
type ID [16]byte

// Parse accepts the canonical 32-character hex form as well as the
// dashed UUID form. Braced and urn:uuid: spellings are rejected; they
// have no business in /etc/machine-id or on the command line.
func Parse(s string) (ID, error) {
	if len(s) != 32 && len(s) != 36 {
		return ID{}, fmt.Errorf("invalid machine id %q", s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid machine id %q: %w", s, err)
	}
	return ID(u), nil
}

// Random generates a uniformly random identity.
func Random() (ID, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return ID{}, fmt.Errorf("failed to generate machine id: %w", err)
	}
	return ID(u), nil
}

// String renders the identity as 32 lowercase hex characters, the format
// /etc/machine-id expects.
func (id ID) String() string {
	return strings.ReplaceAll(uuid.UUID(id).String(), "-", "")
}

func (id ID) IsZero() bool {
	return id == ID{}
}
