package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/mailadmin/client-go/internal/apierrors"
)

// KeyFieldRule is a path into the decoded key envelope. An empty path
// selects the envelope itself.
type KeyFieldRule []string

// KeyFieldRulesV1 lists where the server may place the public key, in
// priority order. The first present and non-empty value wins.
var KeyFieldRulesV1 = []KeyFieldRule{
	{"data", "publicKey"},
	{"data", "public_key"},
	{"publicKey"},
	{"public_key"},
	{"key"},
	{},
}

// userFieldRules locate the user record in a /me response.
var userFieldRules = []KeyFieldRule{
	{"data"},
	{"user"},
	{},
}

func (r KeyFieldRule) String() string {
	if len(r) == 0 {
		return "<envelope>"
	}
	return strings.Join(r, ".")
}

// ExtractPublicKey applies rules to a decoded envelope and returns the key
// string along with the rule that produced it. A winning value that is not
// a non-empty string is a format error.
func ExtractPublicKey(envelope any, rules []KeyFieldRule) (string, KeyFieldRule, error) {
	value, rule := firstPresent(envelope, rules)
	key, ok := value.(string)
	if !ok {
		return "", rule, apierrors.NewFormatError("public key is not a string", nil)
	}
	if key == "" {
		return "", rule, apierrors.NewFormatError("public key is empty", nil)
	}
	return key, rule, nil
}

// firstPresent returns the first value selected by rules that is present
// and non-empty. The last rule's value is returned as is when nothing
// earlier matches, so a trailing empty rule yields the envelope.
func firstPresent(envelope any, rules []KeyFieldRule) (any, KeyFieldRule) {
	var (
		last     any
		lastRule KeyFieldRule
	)
	for _, rule := range rules {
		value, ok := lookup(envelope, rule)
		if ok && present(value) {
			return value, rule
		}
		last, lastRule = value, rule
	}
	return last, lastRule
}

func lookup(v any, path []string) (any, bool) {
	for _, field := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = obj[field]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// present reports whether v counts as a supplied value: not null, not
// false, not an empty string and not numeric zero. Objects and arrays
// always count.
func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

func decodeEnvelope(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
