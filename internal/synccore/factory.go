package synccore

import "go.uber.org/multierr"

// OperationSpec is the input to a batch construction call: everything
// NewOperation needs except the generated id.
type OperationSpec struct {
	Device      DeviceId
	Sequence    int64
	Type        OperationType
	TargetPath  string
	Data        map[string]interface{}
	VectorClock VectorClock
	Parent      *OperationId
}

// NewOperation is the sequence-keyed constructor named in §6: it generates
// an id from device+sequence, builds and validates the operation's payload
// against its type's expected kind, and validates the resulting operation.
func NewOperation(
	device DeviceId,
	seq int64,
	opType OperationType,
	targetPath string,
	data map[string]interface{},
	vc VectorClock,
	parent *OperationId,
) (Operation, error) {
	id, err := GenerateOperationId(device, seq)
	if err != nil {
		return Operation{}, err
	}
	payload, err := NewOperationPayload(PayloadKindForOperationType(opType), data)
	if err != nil {
		return Operation{}, err
	}
	return newOperation(id, device, opType, targetPath, payload, vc, parent)
}

// NewOperationWithUUID is the UUID-keyed constructor, used where no stable
// per-device sequence counter is available (e.g. a manual-resolution
// successor minted by a host rather than a device's own operation log).
func NewOperationWithUUID(
	device DeviceId,
	opType OperationType,
	targetPath string,
	data map[string]interface{},
	vc VectorClock,
	parent *OperationId,
) (Operation, error) {
	id, err := GenerateOperationIdWithUUID(device)
	if err != nil {
		return Operation{}, err
	}
	payload, err := NewOperationPayload(PayloadKindForOperationType(opType), data)
	if err != nil {
		return Operation{}, err
	}
	return newOperation(id, device, opType, targetPath, payload, vc, parent)
}

// NewOperationBatch builds every spec in specs, aggregating every failure
// via multierr rather than stopping at the first. Callers inspect the
// returned error with multierr.Errors to recover individual failures; the
// ok slice omits any spec that failed.
func NewOperationBatch(specs []OperationSpec) ([]Operation, error) {
	ops := make([]Operation, 0, len(specs))
	var combined error
	for _, spec := range specs {
		op, err := NewOperation(spec.Device, spec.Sequence, spec.Type, spec.TargetPath, spec.Data, spec.VectorClock, spec.Parent)
		if err != nil {
			combined = multierr.Append(combined, err)
			continue
		}
		ops = append(ops, op)
	}
	return ops, combined
}

// NewStatementOperation builds a CREATE_STATEMENT or UPDATE_STATEMENT
// operation from its id/content fields.
func NewStatementOperation(device DeviceId, seq int64, verb OperationVerb, targetPath, id, content string, vc VectorClock, parent *OperationId) (Operation, error) {
	opType := CreateStatement
	if verb == VerbUpdate {
		opType = UpdateStatement
	}
	data := map[string]interface{}{"id": id, "content": content}
	return NewOperation(device, seq, opType, targetPath, data, vc, parent)
}

// NewArgumentOperation builds a CREATE_ARGUMENT or UPDATE_ARGUMENT
// operation from its id/premises/conclusions fields.
func NewArgumentOperation(device DeviceId, seq int64, verb OperationVerb, targetPath, id string, premises, conclusions []interface{}, vc VectorClock, parent *OperationId) (Operation, error) {
	opType := CreateArgument
	if verb == VerbUpdate {
		opType = UpdateArgument
	}
	data := map[string]interface{}{"id": id, "premises": premises, "conclusions": conclusions}
	return NewOperation(device, seq, opType, targetPath, data, vc, parent)
}

// NewTreePositionOperation builds an UPDATE_TREE_POSITION operation from
// raw x/y coordinates.
func NewTreePositionOperation(device DeviceId, seq int64, targetPath string, x, y float64, vc VectorClock, parent *OperationId) (Operation, error) {
	data := map[string]interface{}{"x": x, "y": y}
	return NewOperation(device, seq, UpdateTreePosition, targetPath, data, vc, parent)
}

// NewConnectionOperation builds a CREATE_CONNECTION or UPDATE_CONNECTION
// operation from its source/target/type fields.
func NewConnectionOperation(device DeviceId, seq int64, verb OperationVerb, targetPath, sourceID, targetID, connectionType string, vc VectorClock, parent *OperationId) (Operation, error) {
	opType := CreateConnection
	if verb == VerbUpdate {
		opType = UpdateConnection
	}
	data := map[string]interface{}{"sourceId": sourceID, "targetId": targetID, "connectionType": connectionType}
	return NewOperation(device, seq, opType, targetPath, data, vc, parent)
}

// NewMetadataOperation builds an UPDATE_METADATA operation from a key/value
// pair.
func NewMetadataOperation(device DeviceId, seq int64, targetPath, key string, value interface{}, vc VectorClock, parent *OperationId) (Operation, error) {
	data := map[string]interface{}{"key": key, "value": value}
	return NewOperation(device, seq, UpdateMetadata, targetPath, data, vc, parent)
}

// NewDeletionOperation builds any DELETE_* operation; deletions always
// carry an EMPTY payload regardless of target.
func NewDeletionOperation(device DeviceId, seq int64, opType OperationType, targetPath string, vc VectorClock, parent *OperationId) (Operation, error) {
	if !opType.IsDeletion() {
		return Operation{}, newValidationError("operationType", "must be a deletion type")
	}
	return NewOperation(device, seq, opType, targetPath, nil, vc, parent)
}
