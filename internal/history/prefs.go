package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Prefs holds a user's assistant preferences.
type Prefs struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	ShowThoughts bool
}

// DefaultPrefs are the preferences applied to users who never changed
// anything.
func DefaultPrefs() Prefs {
	return Prefs{
		Model:       "auto",
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

// GetPrefs returns the stored preferences for a user, or DefaultPrefs
// when the user has none.
func (s *Store) GetPrefs(ctx context.Context, userID int64) (Prefs, error) {
	p := DefaultPrefs()

	var showThoughts int
	err := s.db.QueryRowContext(ctx, `
		SELECT model, temperature, max_tokens, show_thoughts
		FROM prefs WHERE user_id = ?`, userID,
	).Scan(&p.Model, &p.Temperature, &p.MaxTokens, &showThoughts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DefaultPrefs(), nil
		}
		return Prefs{}, fmt.Errorf("history: get prefs: %w", err)
	}

	p.ShowThoughts = showThoughts != 0
	if p.Model == "" {
		p.Model = DefaultPrefs().Model
	}
	return p, nil
}

// SetPrefs stores preferences for a user, replacing any previous values.
func (s *Store) SetPrefs(ctx context.Context, userID int64, p Prefs) error {
	showThoughts := 0
	if p.ShowThoughts {
		showThoughts = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO prefs (user_id, model, temperature, max_tokens, show_thoughts, updated_at)
		VALUES (?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))`,
		userID, p.Model, p.Temperature, p.MaxTokens, showThoughts,
	)
	if err != nil {
		return fmt.Errorf("history: set prefs: %w", err)
	}
	return nil
}

// UpdatePrefs loads a user's preferences, applies fn, and stores the result.
func (s *Store) UpdatePrefs(ctx context.Context, userID int64, fn func(*Prefs)) (Prefs, error) {
	p, err := s.GetPrefs(ctx, userID)
	if err != nil {
		return Prefs{}, err
	}
	fn(&p)
	if err := s.SetPrefs(ctx, userID, p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}
