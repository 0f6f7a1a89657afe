package baidu

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/geocoder/internal/domain"
)

// rawURLEncode percent-encodes s per RFC 3986, so spaces become %20.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// scalarString reads a JSON string or number. Null, absent and other
// shapes report false.
func scalarString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", false
		}
		return n.String(), true
	default:
		return "", false
	}
}

// object decodes raw into its members. Anything other than a JSON object
// yields nil.
func object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if !isObject(raw) {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// scalarField is scalarString as an optional record field.
func scalarField(raw json.RawMessage) *string {
	s, ok := scalarString(raw)
	if !ok {
		return nil
	}
	return domain.String(s)
}

// scalarFloat reads a JSON number or numeric string.
func scalarFloat(raw json.RawMessage) *float64 {
	s, ok := scalarString(raw)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
