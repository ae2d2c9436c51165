package orchestrator

import (
	"encoding/json"
	"fmt"
)

// Envelope is the typed JSON wrapper an orchestration host exchanges with
// a human-facing collaborator: a message type tag plus a raw payload the
// caller parses once it knows which type it received.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Envelope type tags.
const (
	MsgResolutionRequest  = "resolution_request"
	MsgResolutionDecision = "resolution_decision"
	MsgResolutionApplied  = "resolution_applied"
	MsgError              = "error"
)

// NewEnvelope wraps data under msgType.
func NewEnvelope(msgType string, data interface{}) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: marshal %s payload: %w", msgType, err)
	}
	return &Envelope{Type: msgType, Data: raw}, nil
}

// ParseData unmarshals the envelope's payload into target.
func (e *Envelope) ParseData(target interface{}) error {
	return json.Unmarshal(e.Data, target)
}

// ToJSON serializes the envelope itself.
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes a raw envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("orchestrator: parse envelope: %w", err)
	}
	return &e, nil
}

// ResolutionRequest is sent to a human-facing collaborator when a
// Conflict.RequiresUserDecision() is true: the conflict is semantic or has
// no automatic resolution option, and needs a choice among the conflicting
// operations.
type ResolutionRequest struct {
	ConflictID        string   `json:"conflict_id"`
	TargetPath        string   `json:"target_path"`
	ConflictType      string   `json:"conflict_type"`
	Severity          string   `json:"severity"`
	CandidateOpIDs    []string `json:"candidate_operation_ids"`
	AvailableStrategy []string `json:"available_strategies"`
}

// ResolutionDecision is the reply: the human's chosen strategy and, for a
// manual strategy, the operation id they selected as the winner.
type ResolutionDecision struct {
	ConflictID       string  `json:"conflict_id"`
	Strategy         string  `json:"strategy"`
	SelectedOpID     *string `json:"selected_operation_id,omitempty"`
	ResolvedByDevice string  `json:"resolved_by_device"`
}

// ResolutionApplied confirms a decision was recorded against the
// conflict repository.
type ResolutionApplied struct {
	ConflictID string `json:"conflict_id"`
	Strategy   string `json:"strategy"`
}

// ErrorEnvelope carries a failure back to the caller of a request.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newErrorEnvelope(code, message string) (*Envelope, error) {
	return NewEnvelope(MsgError, ErrorEnvelope{Code: code, Message: message})
}
