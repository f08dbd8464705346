package blob

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DecodeInline decodes an inline attachment payload given as a data URL or as
// bare base64.
func DecodeInline(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty attachment payload")
	}
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return nil, errors.New("malformed data url")
		}
		if strings.HasSuffix(header, ";base64") {
			return decodeBase64(body)
		}
		decoded, err := url.PathUnescape(body)
		if err != nil {
			return nil, err
		}
		return []byte(decoded), nil
	}
	return decodeBase64(s)
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return b, nil
}
