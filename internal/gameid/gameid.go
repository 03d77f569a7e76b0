// Package gameid generates table identifiers: a UUIDv7 rendered as 26
// characters of Crockford base32, so ids sort by creation time.
package gameid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of every id.
const Length = 26

// Source produces the UUIDs ids are derived from.
type Source func() (uuid.UUID, error)

// Generator issues ids from a Source.
type Generator struct {
	source Source
}

// NewGenerator returns a Generator reading from source, or from uuid.NewV7
// when source is nil.
func NewGenerator(source Source) *Generator {
	if source == nil {
		source = uuid.NewV7
	}
	return &Generator{source: source}
}

// Generate returns a new id from uuid.NewV7.
func Generate() (string, error) {
	return NewGenerator(nil).Generate()
}

// Generate returns the next id.
func (g *Generator) Generate() (string, error) {
	u, err := g.source()
	if err != nil {
		return "", fmt.Errorf("generate game id: %w", err)
	}
	return FromUUID(u), nil
}

// FromUUID encodes u. The 128 bits are left-padded to 130 and read five at
// a time, so the first character is at most '7'.
func FromUUID(u uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		var v byte
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2 // two padding bits lead
			v <<= 1
			if bit >= 0 && u[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}

// Validate checks that id has the right length and alphabet.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
