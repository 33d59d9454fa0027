package event

import "github.com/l1jgo/replicore/internal/object"

type PlayerEntered struct {
	GUID       object.GUID `json:"guid"`
	SessionID  uint64      `json:"session"`
	MapID      uint32      `json:"map"`
	InstanceID uint32      `json:"instance"`
}

type PlayerLeft struct {
	GUID      object.GUID `json:"guid"`
	SessionID uint64      `json:"session"`
}

// ObjectDespawned is emitted after cleanup has taken a despawned object
// out of its partition.
type ObjectDespawned struct {
	GUID  object.GUID `json:"guid"`
	MapID uint32      `json:"map"`
}

// PartitionUnloaded is emitted when an empty partition is dropped.
type PartitionUnloaded struct {
	MapID      uint32 `json:"map"`
	InstanceID uint32 `json:"instance"`
}
