package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idLength   = 12
)

// GenerateID returns a short url-safe identifier for application records
// (bookings, schedules, exceptions). Collision probability at this length
// is negligible for the record volumes a single studio produces.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return ""
	}
	return id
}
