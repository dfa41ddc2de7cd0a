package seaduck

import (
	"context"
	"time"

	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/spf13/cast"
)

// TableSnapshots is Snapshots decoded into iceberg-go snapshots. Columns the
// engine does not report are left at their zero value.
func (c *Catalog) TableSnapshots(ctx context.Context, ref TableRef) ([]table.Snapshot, error) {
	res, err := c.snapshots(ctx, ref)
	if err != nil {
		return nil, err
	}

	rows := res.Maps()
	snapshots := make([]table.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := decodeSnapshot(row)
		if err != nil {
			return nil, errors.New(ErrStatementFailed, "failed to decode snapshot row", err).
				AddContext("table", ref.String())
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func decodeSnapshot(row map[string]any) (table.Snapshot, error) {
	var (
		snap table.Snapshot
		err  error
	)

	if v, ok := row["snapshot_id"]; ok {
		if snap.SnapshotID, err = cast.ToInt64E(v); err != nil {
			return snap, err
		}
	}
	if v, ok := row["parent_snapshot_id"]; ok && v != nil {
		parent, err := cast.ToInt64E(v)
		if err != nil {
			return snap, err
		}
		snap.ParentSnapshotID = &parent
	}
	if v, ok := row["sequence_number"]; ok {
		if snap.SequenceNumber, err = cast.ToInt64E(v); err != nil {
			return snap, err
		}
	}
	if v, ok := row["timestamp_ms"]; ok {
		if snap.TimestampMs, err = toUnixMilli(v); err != nil {
			return snap, err
		}
	}
	if v, ok := row["manifest_list"]; ok {
		snap.ManifestList = cast.ToString(v)
	}
	return snap, nil
}

// toUnixMilli accepts the engine's TIMESTAMP value or an integer millisecond count.
func toUnixMilli(v any) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), nil
	case *time.Time:
		if t == nil {
			return 0, nil
		}
		return t.UnixMilli(), nil
	default:
		return cast.ToInt64E(v)
	}
}
