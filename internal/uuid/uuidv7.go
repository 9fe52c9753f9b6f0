// Package uuid generates the identifiers assigned to stored documents.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a new UUIDv7 based on the current timestamp.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a UUIDv7 whose time prefix is taken from t.
// The prefix only makes collisions across milliseconds impossible; ids are not
// meant to be compared for ordering.
//
// Layout (RFC 9562):
// - 48 bits: Unix timestamp in milliseconds
// - 4 bits: version (0111 = 7)
// - 12 bits: random data
// - 2 bits: variant (10)
// - 62 bits: random data
func NewAt(t time.Time) string {
	var id [16]byte

	binary.BigEndian.PutUint64(id[0:8], uint64(t.UnixMilli())<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// Fallback to a random UUIDv4 if the entropy source fails
		return googleuuid.NewString()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid checks if a string is a well-formed UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// Time extracts the millisecond timestamp embedded in a UUIDv7.
func Time(s string) (time.Time, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if parsed.Version() != 7 {
		return time.Time{}, fmt.Errorf("uuid %s is version %d, not 7", s, parsed.Version())
	}
	ms := int64(binary.BigEndian.Uint64(append(make([]byte, 2), parsed[0:6]...)))
	return time.UnixMilli(ms), nil
}
