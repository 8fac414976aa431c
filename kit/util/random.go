package util

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"

	"github.com/pkg/errors"
)

// GetRandomString draws length characters uniformly from alphabet.
func GetRandomString(alphabet string, length int) (string, error) {
	if alphabet == "" {
		return "", errors.New("empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "read random failed")
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result), nil
}

// GetURLSafeToken returns nBytes of randomness encoded as unpadded url-safe base64.
func GetURLSafeToken(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random failed")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
