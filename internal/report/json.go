package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
)

type jsonReport struct {
	Module         string         `json:"module"`
	Space          string         `json:"space"`
	Locators       []string       `json:"locators"`
	Matched        bool           `json:"matched"`
	References     int            `json:"references"`
	Checked        int            `json:"checked"`
	HelperClasses  []string       `json:"helperClasses"`
	FailingClasses int            `json:"failingClasses"`
	Counts         map[string]int `json:"counts"`
	Mismatches     []jsonMismatch `json:"mismatches"`
	ElapsedMillis  float64        `json:"elapsedMillis"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}

type jsonMismatch struct {
	Kind     string   `json:"kind"`
	Severity string   `json:"severity"`
	Class    string   `json:"class"`
	Symbol   string   `json:"symbol"`
	Sources  []string `json:"sources"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
	Cause    string   `json:"cause,omitempty"`
	Message  string   `json:"message"`
}

func toJSON(r *Report) jsonReport {
	out := jsonReport{
		Module:         r.Module,
		Space:          r.Space,
		Locators:       nonNil(r.Locators),
		Matched:        r.Matched(),
		References:     r.References,
		Checked:        r.Checked,
		HelperClasses:  nonNil(r.HelperClasses),
		FailingClasses: r.FailingClasses(),
		Counts:         make(map[string]int, len(muzzle.AllMismatchKinds)),
		Mismatches:     make([]jsonMismatch, 0, len(r.Mismatches)),
		ElapsedMillis:  float64(r.Elapsed.Microseconds()) / 1000,
		GeneratedAt:    r.GeneratedAt,
	}

	counts := r.Counts()
	for _, kind := range muzzle.AllMismatchKinds {
		out.Counts[kind.String()] = counts[kind]
	}

	for _, m := range r.Mismatches {
		jm := jsonMismatch{
			Kind:     m.Kind.String(),
			Severity: Severity(m.Kind),
			Class:    m.ClassName,
			Symbol:   m.Symbol,
			Sources:  make([]string, 0, len(m.Sources)),
			Message:  m.String(),
		}
		for _, s := range m.Sources {
			jm.Sources = append(jm.Sources, s.String())
		}
		if m.Kind == muzzle.MissingFlag {
			jm.Expected = m.Expected.String()
			jm.Actual = m.Actual.String()
		}
		if m.Cause != nil {
			jm.Cause = m.Cause.Error()
		}
		out.Mismatches = append(out.Mismatches, jm)
	}

	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteJSON writes r as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
