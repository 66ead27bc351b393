package util

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// UIDMatcher checks the format of usernames.
var UIDMatcher = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

func ConvertStringToInt64(src string) (int64, error) {
	parsed, err := strconv.ParseInt(src, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to convert %q to int64", src)
	}
	return parsed, nil
}

// GenerateSecret returns a random hex string, used for the JWT secret on
// first start.
func GenerateSecret(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate secret")
	}
	return hex.EncodeToString(buf), nil
}
