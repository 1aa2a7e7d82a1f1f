package util

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// pinAlphabet leaves out 0/O, 1/I and L so a code read over the phone or
// scribbled on a receipt cannot be mistyped.
const pinAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePIN returns a handoff code of the given length drawn from the
// confusable-reduced alphabet. Lengths below one fall back to six characters.
func GeneratePIN(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	max := big.NewInt(int64(len(pinAlphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(pinAlphabet[n.Int64()])
	}
	return builder.String(), nil
}
