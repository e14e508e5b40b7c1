package results

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

// Serialize renders v as indented JSON with object keys sorted at every
// level, so identical input always produces identical bytes.
func Serialize(v any) (string, error) {
	first, err := json.Marshal(v)
	if err != nil {
		return "", encodeFailure(err)
	}
	// Round-trip through generic values: encoding/json sorts map keys, which
	// fixes key order regardless of struct field order.
	dec := json.NewDecoder(bytes.NewReader(first))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return "", encodeFailure(err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(generic); err != nil {
		return "", encodeFailure(err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MustSerialize is Serialize for values that cannot fail to encode; on the
// impossible error it falls back to a hand-built failure document.
func MustSerialize(v any) string {
	s, err := Serialize(v)
	if err != nil {
		b, _ := json.Marshal(err.Error())
		return `{"error": ` + string(b) + `, "success": false}`
	}
	return s
}

func encodeFailure(err error) error {
	return apperr.New(apperr.ParsingFailed, "JSON encoding failed: "+err.Error())
}
