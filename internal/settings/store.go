package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// readTimeout bounds the lookups issued during zone loading. Loading must
// not stall on a wedged database; stale defaults are preferable.
const readTimeout = 2 * time.Second

// GroupSetting is one persisted volume state row.
type GroupSetting struct {
	ZoneID    int       `json:"zone_id"`
	ConfigID  int       `json:"config_id"`
	GroupID   int       `json:"group_id"`
	GainIndex int       `json:"gain_index"`
	Muted     bool      `json:"muted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes volume group settings.
//
// Thread Safety:
//   - All methods are safe for concurrent use; the underlying
//     database/sql pool serialises access.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a settings store on an open database connection.
//
// Parameters:
//   - db: Database opened via database.Open with migrations applied
//   - logger: Structured logger (nil uses slog.Default)
//
// Returns:
//   - *Store: Ready-to-use store
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// GroupVolume returns the persisted gain index and mute flag for a volume
// group, if any. It satisfies the loader's gain seeding interface, so it
// deliberately swallows errors: a read failure during zone loading is
// logged and treated as "no saved state".
//
// Parameters:
//   - zoneID: Owning zone ID
//   - configID: Zone configuration ID within the zone
//   - groupID: Volume group ID within the configuration
//
// Returns:
//   - int: Saved gain index (0 when ok is false)
//   - bool: Saved mute flag (false when ok is false)
//   - bool: ok, true when a row exists
func (s *Store) GroupVolume(zoneID, configID, groupID int) (int, bool, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	var (
		gain  int
		muted int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT gain_index, muted FROM volume_group_settings
		 WHERE zone_id = ? AND config_id = ? AND group_id = ?`,
		zoneID, configID, groupID,
	).Scan(&gain, &muted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, false
	}
	if err != nil {
		s.logger.Warn("volume settings read failed",
			"zone_id", zoneID,
			"config_id", configID,
			"group_id", groupID,
			"error", err)
		return 0, false, false
	}
	return gain, muted != 0, true
}

// SaveGain persists the gain index for a volume group, creating the row
// if it does not exist. The mute flag of an existing row is preserved.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - zoneID, configID, groupID: Group key
//   - gainIndex: New gain index (must be >= 0)
//
// Returns:
//   - error: ErrInvalidGain for a negative index, or the write failure
func (s *Store) SaveGain(ctx context.Context, zoneID, configID, groupID, gainIndex int) error {
	if gainIndex < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGain, gainIndex)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volume_group_settings (zone_id, config_id, group_id, gain_index, muted, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?)
		 ON CONFLICT(zone_id, config_id, group_id)
		 DO UPDATE SET gain_index = excluded.gain_index, updated_at = excluded.updated_at`,
		zoneID, configID, groupID, gainIndex, now(),
	)
	if err != nil {
		return fmt.Errorf("saving gain for group %d/%d/%d: %w", zoneID, configID, groupID, err)
	}
	return nil
}

// SaveMuted persists the mute flag for a volume group, creating the row
// if it does not exist. The gain index of an existing row is preserved.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - zoneID, configID, groupID: Group key
//   - muted: New mute state
//
// Returns:
//   - error: The write failure, if any
func (s *Store) SaveMuted(ctx context.Context, zoneID, configID, groupID int, muted bool) error {
	flag := 0
	if muted {
		flag = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volume_group_settings (zone_id, config_id, group_id, gain_index, muted, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)
		 ON CONFLICT(zone_id, config_id, group_id)
		 DO UPDATE SET muted = excluded.muted, updated_at = excluded.updated_at`,
		zoneID, configID, groupID, flag, now(),
	)
	if err != nil {
		return fmt.Errorf("saving mute for group %d/%d/%d: %w", zoneID, configID, groupID, err)
	}
	return nil
}

// Snapshot returns all persisted volume settings ordered by group key.
// The diagnostics API exposes this for inspecting what a reload would
// seed.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []GroupSetting: All rows, possibly empty
//   - error: The read failure, if any
func (s *Store) Snapshot(ctx context.Context) ([]GroupSetting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT zone_id, config_id, group_id, gain_index, muted, updated_at
		 FROM volume_group_settings
		 ORDER BY zone_id, config_id, group_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying volume settings: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var out []GroupSetting
	for rows.Next() {
		var (
			gs      GroupSetting
			muted   int
			updated string
		)
		if err := rows.Scan(&gs.ZoneID, &gs.ConfigID, &gs.GroupID, &gs.GainIndex, &muted, &updated); err != nil {
			return nil, fmt.Errorf("scanning volume setting: %w", err)
		}
		gs.Muted = muted != 0
		if ts, err := time.Parse(time.RFC3339, updated); err == nil {
			gs.UpdatedAt = ts
		}
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating volume settings: %w", err)
	}
	return out, nil
}

// Delete removes the persisted state for a volume group. Used when a
// reload drops a group so stale rows do not accumulate.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - zoneID, configID, groupID: Group key
//
// Returns:
//   - error: The write failure, if any
func (s *Store) Delete(ctx context.Context, zoneID, configID, groupID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM volume_group_settings
		 WHERE zone_id = ? AND config_id = ? AND group_id = ?`,
		zoneID, configID, groupID,
	)
	if err != nil {
		return fmt.Errorf("deleting settings for group %d/%d/%d: %w", zoneID, configID, groupID, err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
