// Package password generates random proxy credentials.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultLength is used when the operator does not request a specific length.
const DefaultLength = 10

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
)

// Generate returns a random credential of the given length containing at
// least one lowercase letter, one uppercase letter and one digit. Lengths
// below 3 cannot satisfy the composition rule and are rejected.
func Generate(length int) (string, error) {
	if length < 3 {
		return "", fmt.Errorf("password length must be at least 3, got %d", length)
	}

	all := lowercase + uppercase + digits

	buf := make([]byte, length)
	for i := range buf {
		c, err := randomFrom(all)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}

	// Overwrite three distinct positions with one character from each
	// required class so the strict composition rule always holds.
	positions, err := distinctPositions(length, 3)
	if err != nil {
		return "", err
	}
	for i, class := range []string{lowercase, uppercase, digits} {
		c, err := randomFrom(class)
		if err != nil {
			return "", err
		}
		buf[positions[i]] = c
	}

	return string(buf), nil
}

func randomFrom(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return charset[n.Int64()], nil
}

// distinctPositions picks count distinct indexes in [0, length) in random
// order, so the mandatory class characters do not land at fixed offsets.
func distinctPositions(length, count int) ([]int, error) {
	perm := make([]int, length)
	for i := range perm {
		perm[i] = i
	}
	for i := length - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("read random: %w", err)
		}
		j := int(n.Int64())
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:count], nil
}
