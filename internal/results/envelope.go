package results

import (
	"encoding/json"
	"errors"

	"github.com/hyperifyio/periphery-audit/internal/apperr"
)

// Summary aggregates a record list.
type Summary struct {
	ByKind      map[string]int `json:"by_kind"`
	TotalUnused int            `json:"total_unused"`
}

// Summarize counts records in one pass.
func Summarize(records []Record) Summary {
	byKind := make(map[string]int)
	for _, r := range records {
		byKind[r.Kind]++
	}
	return Summary{ByKind: byKind, TotalUnused: len(records)}
}

// Envelope is the uniform tool result. A success carries Results and
// Summary; a failure carries Error only.
type Envelope struct {
	Success bool     `json:"success"`
	Results []Record `json:"results,omitempty"`
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Success wraps records with their derived summary.
func Success(records []Record) Envelope {
	if records == nil {
		records = []Record{}
	}
	s := Summarize(records)
	return Envelope{Success: true, Results: records, Summary: &s}
}

// Failure wraps a message.
func Failure(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}

// FromError converts err into a failure envelope. Classified errors keep
// their message; anything else is reported as unexpected.
func FromError(err error) Envelope {
	return Failure(Message(err))
}

// Message renders err the way failure envelopes report it.
func Message(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return "Unexpected error: " + err.Error()
}

type successWire struct {
	Results []Record `json:"results"`
	Success bool     `json:"success"`
	Summary Summary  `json:"summary"`
}

type failureWire struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// MarshalJSON emits exactly one variant; a success always includes a
// results array, even when empty.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if !e.Success {
		return json.Marshal(failureWire{Error: e.Error})
	}
	records := e.Results
	if records == nil {
		records = []Record{}
	}
	var s Summary
	if e.Summary != nil {
		s = *e.Summary
	} else {
		s = Summarize(records)
	}
	if s.ByKind == nil {
		s.ByKind = map[string]int{}
	}
	return json.Marshal(successWire{Results: records, Success: true, Summary: s})
}

// RawOutput is returned for analyzer formats that are not parsed.
type RawOutput struct {
	Format  string `json:"format,omitempty"`
	Output  string `json:"output"`
	Success bool   `json:"success"`
}

// Raw wraps unparsed analyzer output.
func Raw(output, format string) RawOutput {
	return RawOutput{Format: format, Output: output, Success: true}
}
