package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/l1jgo/replicore/internal/object"
)

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load returns the snapshot for guid, or nil if none was saved.
func (r *SnapshotRepo) Load(ctx context.Context, guid object.GUID) (*Snapshot, error) {
	var (
		s      Snapshot
		typeID int16
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT type_id, map_id, instance_id, pos_x, pos_y, pos_z, orientation, field_start, fields
		 FROM object_snapshots WHERE guid = $1`, int64(guid),
	).Scan(&typeID, &s.MapID, &s.InstanceID, &s.X, &s.Y, &s.Z, &s.O, &s.FieldStart, &s.Fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", guid, err)
	}
	s.GUID = guid
	s.TypeID = object.TypeID(typeID)
	return &s, nil
}

// SaveBatch upserts all snapshots in one transaction; any failure rolls
// the whole batch back.
func (r *SnapshotRepo) SaveBatch(ctx context.Context, snaps []*Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range snaps {
		batch.Queue(
			`INSERT INTO object_snapshots
			   (guid, type_id, map_id, instance_id, pos_x, pos_y, pos_z, orientation, field_start, fields, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			 ON CONFLICT (guid) DO UPDATE SET
			   type_id = EXCLUDED.type_id, map_id = EXCLUDED.map_id, instance_id = EXCLUDED.instance_id,
			   pos_x = EXCLUDED.pos_x, pos_y = EXCLUDED.pos_y, pos_z = EXCLUDED.pos_z,
			   orientation = EXCLUDED.orientation, field_start = EXCLUDED.field_start,
			   fields = EXCLUDED.fields, updated_at = NOW()`,
			int64(s.GUID), int16(s.TypeID), s.MapID, s.InstanceID, s.X, s.Y, s.Z, s.O, s.FieldStart, s.Fields,
		)
	}
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("snapshot upsert: %w", err)
		}
		return nil
	})
}

func (r *SnapshotRepo) Delete(ctx context.Context, guid object.GUID) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM object_snapshots WHERE guid = $1`, int64(guid))
	return err
}
