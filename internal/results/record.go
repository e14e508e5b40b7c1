// Package results turns analyzer JSON into typed records and wraps them in
// the success/failure envelope returned by every tool.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

// Kind tags emitted by the analyzer that have dedicated views.
const (
	KindImport = "import"
)

// visibilityModifiers denote broad exposure; declarations carrying one of
// them are candidates for a narrower access level.
var visibilityModifiers = map[string]struct{}{
	"public": {},
	"open":   {},
}

// Record is one finding. Fields are declared in JSON key order.
type Record struct {
	Hints     []string `json:"hints,omitempty"`
	Kind      string   `json:"kind"`
	Location  string   `json:"location"`
	Modifiers []string `json:"modifiers"`
	Name      string   `json:"name"`
}

// wireRecord mirrors Record with pointers so required fields can be told
// apart from zero values.
type wireRecord struct {
	Hints     *[]string `json:"hints"`
	Kind      *string   `json:"kind"`
	Location  *string   `json:"location"`
	Modifiers *[]string `json:"modifiers"`
	Name      *string   `json:"name"`
}

// Parse decodes analyzer JSON output. Blank input means no findings. Any
// decoding problem fails the whole parse; partial results are never returned.
func Parse(raw string) ([]Record, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return []Record{}, nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, decodeFailure(errors.New("expected an array of records, found null"))
	}

	var wire []wireRecord
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, decodeFailure(err)
	}
	out := make([]Record, 0, len(wire))
	for i, w := range wire {
		rec, err := w.toRecord()
		if err != nil {
			return nil, decodeFailure(fmt.Errorf("record %d: %w", i, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func (w wireRecord) toRecord() (Record, error) {
	var missing []string
	if w.Kind == nil {
		missing = append(missing, "kind")
	}
	if w.Name == nil {
		missing = append(missing, "name")
	}
	if w.Modifiers == nil {
		missing = append(missing, "modifiers")
	}
	if w.Location == nil {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return Record{}, fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}
	rec := Record{
		Kind:      *w.Kind,
		Name:      *w.Name,
		Modifiers: append([]string{}, (*w.Modifiers)...),
		Location:  *w.Location,
	}
	if w.Hints != nil {
		rec.Hints = append([]string{}, (*w.Hints)...)
	}
	return rec, nil
}

func decodeFailure(err error) error {
	return apperr.New(apperr.ParsingFailed, "JSON decoding failed: "+err.Error())
}
