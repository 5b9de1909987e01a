package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding is a libinjection match on free-text input.
type InjectionFinding struct {
	Fingerprint string
	Input       string
}

// ScreenInput runs libinjection over text and returns a finding when it
// looks like an injection payload, or nil. Findings are for auditing; the
// read-only checks decide what runs.
//
// Example:
//
//	ScreenInput("laptop computers")        // nil
//	ScreenInput("' OR 1=1--")             // finding with a non-empty Fingerprint
func ScreenInput(text string) *InjectionFinding {
	if text == "" {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(text)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{Fingerprint: string(fingerprint), Input: text}
}
