package domain

import (
	"encoding/json"
	"time"
)

// Capability names recognised by the gateway registry.
const (
	CapabilityDocumentAnalyzer = "document-analyzer"
	CapabilityEntityExtractor  = "entity-extractor"
	CapabilityTimelineBuilder  = "timeline-builder"
	CapabilityLegalAnalyzer    = "legal-analyzer"
	CapabilityFactVerifier     = "fact-verifier"
)

// EmptyPayload is substituted when a capability returns text that is not
// valid JSON. Partial analysis is preferred over none.
var EmptyPayload = json.RawMessage("{}")

// CapabilityResult is the settled outcome of one capability call: either a
// structured payload or an error marker, never both.
type CapabilityResult struct {
	// Payload is the parsed tool response. Set to EmptyPayload when the
	// worker produced unparsable output.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Err is the error marker for a failed call.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the capability call settled with an error.
func (r CapabilityResult) Failed() bool {
	return r.Err != ""
}

// DeepAnalysis aggregates the background capability fan-out. Results holds
// exactly one entry per attempted capability, failures included.
type DeepAnalysis struct {
	Results map[string]CapabilityResult `json:"results"`

	// Elapsed is the total wall-clock time of the fan-out, dispatch to
	// last settlement.
	Elapsed time.Duration `json:"elapsed"`
}

// Succeeded counts capabilities that settled without an error marker.
func (a *DeepAnalysis) Succeeded() int {
	n := 0
	for _, r := range a.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}
