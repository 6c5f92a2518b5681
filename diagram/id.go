package diagram

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// IDAlphabet is the character set generated element ids are drawn from.
var IDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDLength is the number of random characters in a generated id.
var IDLength = 8

// NewID returns prefix followed by a random id.
func NewID(prefix string) (string, error) {
	id, err := nanoid.Generate(IDAlphabet, IDLength)
	if err != nil {
		return "", fmt.Errorf("diagram: generate id: %w", err)
	}
	return prefix + id, nil
}

func idPrefix(el Element) string {
	if _, ok := el.(*Edge); ok {
		return "e-"
	}
	return "n-"
}
