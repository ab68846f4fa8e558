package usecase

import (
	"crypto/rand"
	"io"
)

// promoCodeChars is the alphabet for generated codes; it matches
// model.IsValidCode so generated codes always pass creation checks.
const promoCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generatePromoCode creates a random upper-case alphanumeric code of length n.
func generatePromoCode(n int) (string, error) {
	buffer := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	// 252 is the largest multiple of 36 below 256; rejecting bytes above it
	// keeps every character equally likely.
	out := make([]byte, 0, n)
	for len(out) < n {
		for _, b := range buffer {
			if len(out) == n {
				break
			}
			if b >= 252 {
				continue
			}
			out = append(out, promoCodeChars[int(b)%len(promoCodeChars)])
		}
		if len(out) < n {
			if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
				return "", err
			}
		}
	}
	return string(out), nil
}
