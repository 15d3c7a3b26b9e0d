package service

import (
	"crypto/rand"
	"fmt"

	"madlib-maker/shared/models"
)

// CodeGenerator draws a candidate short code.
type CodeGenerator func() (string, error)

// rejection bound: the largest multiple of the alphabet size that fits in a byte
var maxUnbiasedByte = byte(256 - 256%len(models.ShortCodeAlphabet))

// RandomShortCode draws models.ShortCodeLength symbols uniformly from the
// 62-symbol alphabet. Bytes that would bias the modulo are discarded.
func RandomShortCode() (string, error) {
	code := make([]byte, 0, models.ShortCodeLength)
	buf := make([]byte, models.ShortCodeLength*2)
	for len(code) < models.ShortCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= maxUnbiasedByte {
				continue
			}
			code = append(code, models.ShortCodeAlphabet[int(b)%len(models.ShortCodeAlphabet)])
			if len(code) == models.ShortCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
