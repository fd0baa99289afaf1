package nats

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/codewandler/userstore-go/core/es"
)

const encodedTokenPrefix = "b64_"

// subjectToken makes s usable as a single subject token. Tokens with
// characters NATS treats specially are base64url encoded.
func subjectToken(s string) string {
	if isPlainToken(s) {
		return s
	}
	return encodedTokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(s))
}

func isPlainToken(s string) bool {
	if s == "" || strings.HasPrefix(s, encodedTokenPrefix) {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// subjectForStream maps "<type>:<id>" to "<prefix>.<type>.<id>".
func subjectForStream(prefix, streamID string) (string, error) {
	aggType, aggID, err := es.ParseStreamID(streamID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s.%s", prefix, subjectToken(aggType), subjectToken(aggID)), nil
}
