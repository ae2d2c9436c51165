package synccore

import (
	"encoding/json"
)

// PayloadKind is the tagged-variant discriminator for OperationPayload.
type PayloadKind string

const (
	PayloadStatement  PayloadKind = "STATEMENT"
	PayloadArgument   PayloadKind = "ARGUMENT"
	PayloadTree       PayloadKind = "TREE"
	PayloadPosition   PayloadKind = "POSITION"
	PayloadConnection PayloadKind = "CONNECTION"
	PayloadMetadata   PayloadKind = "METADATA"
	PayloadEmpty      PayloadKind = "EMPTY"
	PayloadGeneric    PayloadKind = "GENERIC"
)

// MaxPayloadBytes bounds a payload's serialized size at 1 MiB.
const MaxPayloadBytes = 1024 * 1024

// PayloadKindForOperationType derives the expected payload kind from an
// operation type: deletions always carry EMPTY; UPDATE_TREE_POSITION
// carries POSITION; everything else follows its target.
func PayloadKindForOperationType(t OperationType) PayloadKind {
	if t.IsDeletion() {
		return PayloadEmpty
	}
	if t == UpdateTreePosition {
		return PayloadPosition
	}
	switch t.Target() {
	case TargetStatement:
		return PayloadStatement
	case TargetArgument:
		return PayloadArgument
	case TargetTree:
		return PayloadTree
	case TargetConnection:
		return PayloadConnection
	case TargetMetadata:
		return PayloadMetadata
	default:
		return PayloadGeneric
	}
}

// OperationPayload is an immutable, tagged-variant payload validated once
// at construction against its kind's required shape.
type OperationPayload struct {
	kind   PayloadKind
	fields map[string]interface{}
}

// NewOperationPayload validates data against kind's required shape and the
// 1 MiB serialized-size bound, then returns an immutable payload. data is
// canonicalized through a JSON round trip so later structural-equality and
// clone comparisons are stable.
func NewOperationPayload(kind PayloadKind, data map[string]interface{}) (OperationPayload, error) {
	canonical, raw, err := canonicalizeViaJSON(data)
	if err != nil {
		return OperationPayload{}, newSerializationError("payload data is not JSON-serializable", err)
	}
	if len(raw) > MaxPayloadBytes {
		return OperationPayload{}, newValidationError("payload", "serialized size exceeds 1 MiB")
	}
	if err := validatePayloadShape(kind, canonical); err != nil {
		return OperationPayload{}, err
	}
	return OperationPayload{kind: kind, fields: canonical}, nil
}

func canonicalizeViaJSON(data map[string]interface{}) (map[string]interface{}, []byte, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, err
	}
	return out, raw, nil
}

func validatePayloadShape(kind PayloadKind, fields map[string]interface{}) error {
	switch kind {
	case PayloadStatement:
		if err := requireNonEmptyString(fields, "id"); err != nil {
			return err
		}
		return requireNonEmptyString(fields, "content")
	case PayloadArgument:
		if err := requireNonEmptyString(fields, "id"); err != nil {
			return err
		}
		if err := requireArray(fields, "premises"); err != nil {
			return err
		}
		return requireArray(fields, "conclusions")
	case PayloadTree:
		if err := requireNonEmptyString(fields, "id"); err != nil {
			return err
		}
		if err := requireNonEmptyString(fields, "rootNodeId"); err != nil {
			return err
		}
		pos, ok := getMap(fields, "position")
		if !ok {
			return newValidationError("position", "required object field is missing")
		}
		if _, ok := getNumber(pos, "x"); !ok {
			return newValidationError("position.x", "required numeric field is missing")
		}
		if _, ok := getNumber(pos, "y"); !ok {
			return newValidationError("position.y", "required numeric field is missing")
		}
		return nil
	case PayloadPosition:
		if _, ok := getNumber(fields, "x"); !ok {
			return newValidationError("x", "required numeric field is missing")
		}
		if _, ok := getNumber(fields, "y"); !ok {
			return newValidationError("y", "required numeric field is missing")
		}
		return nil
	case PayloadConnection:
		if err := requireNonEmptyString(fields, "sourceId"); err != nil {
			return err
		}
		if err := requireNonEmptyString(fields, "targetId"); err != nil {
			return err
		}
		return requireNonEmptyString(fields, "connectionType")
	case PayloadMetadata:
		if err := requireNonEmptyString(fields, "key"); err != nil {
			return err
		}
		if _, ok := fields["value"]; !ok {
			return newValidationError("value", "required field is missing")
		}
		return nil
	case PayloadEmpty, PayloadGeneric:
		return nil
	default:
		return newValidationError("payload.kind", "unknown payload kind")
	}
}

func requireNonEmptyString(fields map[string]interface{}, key string) error {
	v, ok := fields[key]
	if !ok {
		return newValidationError(key, "required string field is missing")
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return newValidationError(key, "must be a non-empty string")
	}
	return nil
}

func requireArray(fields map[string]interface{}, key string) error {
	v, ok := fields[key]
	if !ok {
		return newValidationError(key, "required array field is missing")
	}
	if _, ok := v.([]interface{}); !ok {
		return newValidationError(key, "must be an array")
	}
	return nil
}

func getMap(fields map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := fields[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func getNumber(fields map[string]interface{}, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Kind returns the payload's variant tag.
func (p OperationPayload) Kind() PayloadKind { return p.kind }

// Fields returns a defensive copy of the payload's field map.
func (p OperationPayload) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// HasField reports whether key is present.
func (p OperationPayload) HasField(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// GetField returns key's value and whether it was present.
func (p OperationPayload) GetField(key string) (interface{}, bool) {
	v, ok := p.fields[key]
	return v, ok
}

// Equals is structural equality: same kind and deeply equal fields.
func (p OperationPayload) Equals(other OperationPayload) bool {
	if p.kind != other.kind {
		return false
	}
	pa, _ := json.Marshal(p.fields)
	pb, _ := json.Marshal(other.fields)
	return string(pa) == string(pb)
}

// Clone deep-copies the payload via a JSON round trip, failing if the
// payload's content is no longer serializable.
func (p OperationPayload) Clone() (OperationPayload, error) {
	canonical, _, err := canonicalizeViaJSON(p.fields)
	if err != nil {
		return OperationPayload{}, newSerializationError("payload clone failed", err)
	}
	return OperationPayload{kind: p.kind, fields: canonical}, nil
}

// withExtraFields returns a new payload of the same kind with extra merged
// in (extra wins on key collision). Used only for transform-result trace
// fields and merge/offset outputs; it intentionally skips per-kind
// validation since a transform result may legitimately carry fields beyond
// its originating kind's required shape.
func (p OperationPayload) withExtraFields(extra map[string]interface{}) OperationPayload {
	merged := make(map[string]interface{}, len(p.fields)+len(extra))
	for k, v := range p.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return OperationPayload{kind: p.kind, fields: merged}
}

// extractXY returns the x/y coordinates of a positional payload: POSITION
// carries them directly, TREE carries them nested under "position". Any
// other kind, or a payload missing numeric x/y, reports ok=false.
func (p OperationPayload) extractXY() (x, y float64, ok bool) {
	switch p.kind {
	case PayloadPosition:
		x, okx := getNumber(p.fields, "x")
		y, oky := getNumber(p.fields, "y")
		return x, y, okx && oky
	case PayloadTree:
		pos, ok := getMap(p.fields, "position")
		if !ok {
			return 0, 0, false
		}
		x, okx := getNumber(pos, "x")
		y, oky := getNumber(pos, "y")
		return x, y, okx && oky
	default:
		return 0, 0, false
	}
}

// isPositional reports whether this payload's kind carries x/y coordinates
// at all (regardless of whether they successfully resolve).
func (p OperationPayload) isPositional() bool {
	return p.kind == PayloadPosition || p.kind == PayloadTree
}

// ApplyPositionOffset implements the POSITION_OFFSET transform (§4.3):
// x' = x + otherX*0.1, y' = y + otherY*0.1. Applies only when both p and
// other are positional payloads with resolvable coordinates; otherwise p
// is returned unchanged.
func (p OperationPayload) ApplyPositionOffset(other OperationPayload) OperationPayload {
	if !p.isPositional() {
		return p
	}
	selfX, selfY, selfOK := p.extractXY()
	otherX, otherY, otherOK := other.extractXY()
	if !selfOK || !otherOK {
		return p
	}
	newX := selfX + otherX*0.1
	newY := selfY + otherY*0.1

	switch p.kind {
	case PayloadPosition:
		return p.withExtraFields(map[string]interface{}{"x": newX, "y": newY})
	case PayloadTree:
		pos, _ := getMap(p.fields, "position")
		newPos := make(map[string]interface{}, len(pos)+2)
		for k, v := range pos {
			newPos[k] = v
		}
		newPos["x"] = newX
		newPos["y"] = newY
		return p.withExtraFields(map[string]interface{}{"position": newPos})
	default:
		return p
	}
}

// ApplyContentMerge implements the CONTENT_MERGE transform (§4.3): a
// shallow right-biased merge where other's keys override self's. A no-op
// if either payload is not an object-shaped payload (EMPTY has no merge
// target).
func (p OperationPayload) ApplyContentMerge(other OperationPayload) OperationPayload {
	if p.kind == PayloadEmpty || other.kind == PayloadEmpty {
		return p
	}
	return p.withExtraFields(other.fields)
}

// ApplyMetadataMerge implements the METADATA_MERGE transform (§4.3): only
// valid between two METADATA payloads sharing the same key, producing
// {key, value: other's value, previousValue: self's value}. A no-op when
// either payload is not METADATA or the keys differ.
func (p OperationPayload) ApplyMetadataMerge(other OperationPayload) OperationPayload {
	if p.kind != PayloadMetadata || other.kind != PayloadMetadata {
		return p
	}
	selfKey, _ := p.fields["key"].(string)
	otherKey, _ := other.fields["key"].(string)
	if selfKey != otherKey {
		return p
	}
	return p.withExtraFields(map[string]interface{}{
		"key":           selfKey,
		"value":         other.fields["value"],
		"previousValue": p.fields["value"],
	})
}
