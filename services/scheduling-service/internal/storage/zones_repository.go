package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/meetingtime/libs/db"
	"github.com/md-rashed-zaman/meetingtime/services/scheduling-service/internal/zones"
)

// ZoneRepository reads the zone table from zone_offsets(label text primary
// key, offset_minutes int).
type ZoneRepository struct {
	pool *db.Pool
}

func NewZoneRepository(pool *db.Pool) *ZoneRepository {
	return &ZoneRepository{pool: pool}
}

func (r *ZoneRepository) LoadTable(ctx context.Context) (*zones.Table, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT label, offset_minutes
		FROM zone_offsets
		ORDER BY label
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offsets []zones.Offset
	for rows.Next() {
		var (
			label   string
			minutes int32
		)
		if err := rows.Scan(&label, &minutes); err != nil {
			return nil, err
		}
		offsets = append(offsets, zones.Offset{Label: label, Offset: time.Duration(minutes) * time.Minute})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(offsets) == 0 {
		return nil, fmt.Errorf("zone_offsets is empty")
	}
	return zones.NewTable(offsets...)
}
