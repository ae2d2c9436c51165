package synccore

import (
	"encoding/json"
	"time"
)

// Wire format for Operation, Conflict, and ConflictResolution (§6). Dates
// serialize as RFC3339Nano strings via encoding/json's native time.Time
// support; every other field round-trips through its exported accessors so
// decoding re-validates the same invariants construction does.

// operationPayloadJSON is the single nested "payload" object spec.md:173
// requires in place of separate kind/fields top-level keys: the payload's
// kind and its fields as one JSON object.
type operationPayloadJSON struct {
	Kind   string                 `json:"kind"`
	Fields map[string]interface{} `json:"fields"`
}

type operationJSON struct {
	ID                string               `json:"id"`
	DeviceId          string               `json:"deviceId"`
	Type              string               `json:"operationType"`
	TargetPath        string               `json:"targetPath"`
	Payload           operationPayloadJSON `json:"payload"`
	VectorClock       map[string]int64     `json:"vectorClock"`
	Timestamp         int64                `json:"timestamp"`
	ParentOperationId *string              `json:"parentOperationId,omitempty"`
}

// MarshalJSON encodes the operation's full wire representation.
func (o Operation) MarshalJSON() ([]byte, error) {
	dto := operationJSON{
		ID:         o.id.String(),
		DeviceId:   o.deviceId.String(),
		Type:       string(o.opType),
		TargetPath: o.targetPath,
		Payload: operationPayloadJSON{
			Kind:   string(o.payload.Kind()),
			Fields: o.payload.Fields(),
		},
		VectorClock: o.vectorClock.ToMap(),
		Timestamp:   int64(o.timestamp),
	}
	if o.parentOperationId != nil {
		s := o.parentOperationId.String()
		dto.ParentOperationId = &s
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes an operation, re-validating every field the same
// way newOperation does: an unknown type, a mismatched payload kind, or a
// vector clock missing the device's own entry all fail decode.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var dto operationJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return newSerializationError("operation is not valid JSON", err)
	}

	id, err := ParseOperationId(dto.ID)
	if err != nil {
		return err
	}
	device, err := NewDeviceId(dto.DeviceId)
	if err != nil {
		return err
	}
	payload, err := NewOperationPayload(PayloadKind(dto.Payload.Kind), dto.Payload.Fields)
	if err != nil {
		return err
	}
	vc, err := VectorClockFromMap(dto.VectorClock)
	if err != nil {
		return err
	}
	var parent *OperationId
	if dto.ParentOperationId != nil {
		pid, err := ParseOperationId(*dto.ParentOperationId)
		if err != nil {
			return err
		}
		parent = &pid
	}

	built, err := newOperation(id, device, OperationType(dto.Type), dto.TargetPath, payload, vc, parent)
	if err != nil {
		return err
	}
	*o = built
	return nil
}

type resolutionOptionJSON struct {
	Strategy  string `json:"strategy"`
	Automatic bool   `json:"automatic"`
}

type conflictJSON struct {
	ID                string                 `json:"id"`
	Type              string                 `json:"type"`
	TargetPath        string                 `json:"targetPath"`
	Operations        []Operation            `json:"operations"`
	DetectedAt        time.Time              `json:"detectedAt"`
	ResolutionOptions []resolutionOptionJSON `json:"resolutionOptions"`
	ResolvedAt        *time.Time             `json:"resolvedAt,omitempty"`
	Strategy          *string                `json:"strategy,omitempty"`
	Result            map[string]interface{} `json:"result,omitempty"`
}

// MarshalJSON encodes the conflict's full wire representation, including
// its resolution if one has been recorded.
func (c *Conflict) MarshalJSON() ([]byte, error) {
	dto := conflictJSON{
		ID:         c.id,
		Type:       string(c.conflictType),
		TargetPath: c.targetPath,
		Operations: c.operations,
		DetectedAt: c.detectedAt,
	}
	for _, opt := range c.resolutionOptions {
		dto.ResolutionOptions = append(dto.ResolutionOptions, resolutionOptionJSON{
			Strategy:  string(opt.Strategy),
			Automatic: opt.Automatic,
		})
	}
	if c.resolvedAt != nil {
		dto.ResolvedAt = c.resolvedAt
		s := string(*c.strategy)
		dto.Strategy = &s
		dto.Result = c.result
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a conflict, reconstructing it through NewConflict
// (so the id/targetPath/operation-count invariants are re-checked) and
// then restoring a previously recorded resolution verbatim, preserving its
// original resolvedAt rather than re-stamping it.
func (c *Conflict) UnmarshalJSON(data []byte) error {
	var dto conflictJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return newSerializationError("conflict is not valid JSON", err)
	}

	built, err := NewConflict(dto.ID, ConflictType(dto.Type), dto.TargetPath, dto.Operations)
	if err != nil {
		return err
	}
	built.detectedAt = dto.DetectedAt
	if len(dto.ResolutionOptions) > 0 {
		opts := make([]ResolutionOption, 0, len(dto.ResolutionOptions))
		for _, o := range dto.ResolutionOptions {
			opts = append(opts, ResolutionOption{Strategy: ResolutionStrategy(o.Strategy), Automatic: o.Automatic})
		}
		built.resolutionOptions = opts
	}
	if dto.ResolvedAt != nil {
		resolvedAt := *dto.ResolvedAt
		strategy := ResolutionStrategy("")
		if dto.Strategy != nil {
			strategy = ResolutionStrategy(*dto.Strategy)
		}
		built.resolvedAt = &resolvedAt
		built.strategy = &strategy
		built.result = dto.Result
	}
	*c = *built
	return nil
}

type conflictResolutionJSON struct {
	Strategy      string                 `json:"strategy"`
	Confidence    string                 `json:"confidence"`
	ResolvedAt    time.Time              `json:"resolvedAt"`
	ResolvedBy    string                 `json:"resolvedBy"`
	Context       string                 `json:"context"`
	ResultData     map[string]interface{} `json:"resultData,omitempty"`
	UserSelection  *string                `json:"userSelection,omitempty"`
	Automatic      bool                   `json:"automatic"`
	SemanticOrigin bool                   `json:"semanticOrigin"`
}

// MarshalJSON encodes the resolution's full wire representation.
func (r *ConflictResolution) MarshalJSON() ([]byte, error) {
	dto := conflictResolutionJSON{
		Strategy:      string(r.strategy),
		Confidence:    string(r.confidence),
		ResolvedAt:    r.resolvedAt,
		ResolvedBy:    r.resolvedBy.String(),
		Context:       r.context,
		ResultData:    r.resultData,
		UserSelection:  r.userSelection,
		Automatic:      r.automatic,
		SemanticOrigin: r.semanticOrigin,
	}
	return json.Marshal(dto)
}

// UnmarshalJSON decodes a resolution. Confidence is not re-derived; it
// decodes verbatim since the operation count and original conflict type
// used to derive it are not part of the wire format.
func (r *ConflictResolution) UnmarshalJSON(data []byte) error {
	var dto conflictResolutionJSON
	if err := json.Unmarshal(data, &dto); err != nil {
		return newSerializationError("conflict resolution is not valid JSON", err)
	}
	strategy := ResolutionStrategy(dto.Strategy)
	if !strategy.IsKnown() {
		return newValidationError("resolution.strategy", "unknown resolution strategy")
	}
	resolvedBy, err := NewDeviceId(dto.ResolvedBy)
	if err != nil {
		return err
	}

	r.strategy = strategy
	r.confidence = ResolutionConfidence(dto.Confidence)
	r.resolvedAt = dto.ResolvedAt
	r.resolvedBy = resolvedBy
	r.context = dto.Context
	r.resultData = dto.ResultData
	r.userSelection = dto.UserSelection
	r.automatic = dto.Automatic
	r.semanticOrigin = dto.SemanticOrigin
	return nil
}
