package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

// MaxCodeLength is the longest code GenerateCode produces.
const MaxCodeLength = config.MaxCodeLength

// GenerateCode returns a uniformly random decimal code of exactly length
// digits, drawn from [10^(length-1), 10^length-1] so it never has a leading
// zero.
func GenerateCode(length int) (string, error) {
	if length < 1 || length > MaxCodeLength {
		return "", fmt.Errorf("code length %d out of range", length)
	}

	low := pow10(length - 1)
	span := big.NewInt(pow10(length) - low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	return strconv.FormatInt(low+n.Int64(), 10), nil
}

func pow10(n int) int64 {
	v := int64(1)
	for range n {
		v *= 10
	}
	return v
}
