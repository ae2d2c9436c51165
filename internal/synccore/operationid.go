package synccore

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var operationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_:.\-]+$`)

const (
	minOperationIDLen = 1
	maxOperationIDLen = 128
	operationIDBase   = 36
)

// OperationId is a structured identifier embedding a device's short id, a
// per-device sequence number or a UUID, and (for the sequence form) an
// advisory wall-clock reading. It is immutable and never reused.
type OperationId struct {
	value string
}

func newOperationId(raw string) (OperationId, error) {
	if len(raw) < minOperationIDLen || len(raw) > maxOperationIDLen {
		return OperationId{}, newValidationError("operationId", "length must be between 1 and 128 characters")
	}
	if !operationIDPattern.MatchString(raw) {
		return OperationId{}, newValidationError("operationId", "must match [A-Za-z0-9_:.-]+")
	}
	return OperationId{value: raw}, nil
}

// GenerateOperationId builds an OperationId of the form
// op_{shortId}_{seq}_{base36 wallclock}. seq must be non-negative.
func GenerateOperationId(d DeviceId, seq int64) (OperationId, error) {
	if seq < 0 {
		return OperationId{}, newValidationError("sequence", "must be non-negative")
	}
	wall := strconv.FormatInt(time.Now().UnixNano(), operationIDBase)
	raw := "op_" + d.ShortId() + "_" + strconv.FormatInt(seq, 10) + "_" + wall
	return newOperationId(raw)
}

// GenerateOperationIdWithUUID builds an OperationId of the form
// op_{shortId}_{uuidv4}.
func GenerateOperationIdWithUUID(d DeviceId) (OperationId, error) {
	raw := "op_" + d.ShortId() + "_" + uuid.NewString()
	return newOperationId(raw)
}

// ParseOperationId validates and wraps a raw string produced elsewhere
// (e.g. deserialized from JSON).
func ParseOperationId(raw string) (OperationId, error) {
	return newOperationId(raw)
}

func (id OperationId) String() string { return id.value }

func (id OperationId) IsZero() bool { return id.value == "" }

func (id OperationId) Equals(other OperationId) bool { return id.value == other.value }

// ParsedOperationId is the decomposition of an OperationId's fields.
// Fields that were not present in the id carry their null marker: empty
// string for DeviceShort, -1 for Sequence and Wallclock, and an empty
// string for UUID.
type ParsedOperationId struct {
	DeviceShort string
	Sequence    int64 // -1 if absent
	Wallclock   int64 // -1 if absent
	UUID        string
}

// Parse decomposes the id into its constituent fields, matching whichever
// of the two generation shapes it was built from.
func (id OperationId) Parse() ParsedOperationId {
	result := ParsedOperationId{Sequence: -1, Wallclock: -1}
	parts := strings.Split(id.value, "_")
	if len(parts) < 2 || parts[0] != "op" {
		return result
	}
	result.DeviceShort = parts[1]

	switch len(parts) {
	case 4:
		// op_{shortId}_{seq}_{wallclock}
		if seq, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			result.Sequence = seq
		}
		if wall, err := strconv.ParseInt(parts[3], operationIDBase, 64); err == nil {
			result.Wallclock = wall
		}
	case 3:
		// op_{shortId}_{uuid}, uuid itself contains hyphens not underscores
		result.UUID = parts[2]
	}
	return result
}

// CompareBySequence orders two OperationIds by sequence number when both
// carry one; otherwise falls back to lexicographic comparison of the raw
// id strings. Returns -1, 0, or 1.
func CompareBySequence(a, b OperationId) int {
	pa, pb := a.Parse(), b.Parse()
	if pa.Sequence >= 0 && pb.Sequence >= 0 {
		switch {
		case pa.Sequence < pb.Sequence:
			return -1
		case pa.Sequence > pb.Sequence:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.value, b.value)
}
