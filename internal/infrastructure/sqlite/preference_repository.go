package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/breathe/internal/preferences/domain"
)

// preferenceRow mirrors the preferences table.
type preferenceRow struct {
	LastExercise string
	MasterVolume int
	UpdatedAt    int64 // Unix seconds
}

type preferenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newPreferenceRepository(db *sql.DB) *preferenceRepository {
	return &preferenceRepository{db: db, now: time.Now}
}

var _ domain.Repository = (*preferenceRepository)(nil)

// Get loads the singleton preferences row and its channel flags.
func (r *preferenceRepository) Get() (domain.Preferences, error) {
	var row preferenceRow
	err := r.db.QueryRow(
		`SELECT last_exercise, master_volume, updated_at FROM preferences WHERE id = 1`,
	).Scan(&row.LastExercise, &row.MasterVolume, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Preferences{}, &domain.PreferencesNotFoundError{}
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("querying preferences: %w", err)
	}

	channels, err := r.channels()
	if err != nil {
		return domain.Preferences{}, err
	}

	return domain.Preferences{
		LastExercise: row.LastExercise,
		MasterVolume: row.MasterVolume,
		Channels:     channels,
		UpdatedAt:    time.Unix(row.UpdatedAt, 0),
	}, nil
}

func (r *preferenceRepository) channels() (_ map[string]bool, err error) {
	rows, err := r.db.Query(`SELECT channel_id, enabled FROM channel_preferences WHERE preferences_id = 1`)
	if err != nil {
		return nil, fmt.Errorf("querying channel preferences: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	channels := make(map[string]bool)
	for rows.Next() {
		var (
			id      string
			enabled bool
		)
		if err := rows.Scan(&id, &enabled); err != nil {
			return nil, fmt.Errorf("scanning channel preference: %w", err)
		}
		channels[id] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channel preferences: %w", err)
	}
	return channels, nil
}

// Save replaces the stored preferences in a single transaction.
func (r *preferenceRepository) Save(p domain.Preferences) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	volume := p.WithVolume(p.MasterVolume).MasterVolume
	if _, err := tx.Exec(
		`INSERT INTO preferences (id, last_exercise, master_volume, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   last_exercise = excluded.last_exercise,
		   master_volume = excluded.master_volume,
		   updated_at = excluded.updated_at`,
		p.LastExercise, volume, r.now().Unix(),
	); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM channel_preferences WHERE preferences_id = 1`); err != nil {
		return fmt.Errorf("clearing channel preferences: %w", err)
	}
	for _, id := range p.ChannelIDs() {
		if _, err := tx.Exec(
			`INSERT INTO channel_preferences (channel_id, preferences_id, enabled) VALUES (?, 1, ?)`,
			id, p.Channels[id],
		); err != nil {
			return fmt.Errorf("saving channel %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing preferences: %w", err)
	}
	return nil
}
