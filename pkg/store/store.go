// Package store persists generated features and analytics events in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/helmcode/gherkin-ai/pkg/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when a feature id does not exist.
var ErrNotFound = errors.New("store: feature not found")

const defaultListLimit = 50

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FeatureInput is a generated feature ready to be saved.
type FeatureInput struct {
	Title            string
	Story            string
	GeneratedContent string
	ScenarioCount    int
}

// EventInput is an analytics event. FeatureID may be empty.
type EventInput struct {
	FeatureID string
	EventType string
	Payload   map[string]any
}

type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Open creates the parent directory if needed, opens the database with WAL
// mode and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS features (
			id                TEXT PRIMARY KEY,
			title             TEXT    NOT NULL,
			story             TEXT    NOT NULL,
			generated_content TEXT    NOT NULL,
			scenario_count    INTEGER NOT NULL,
			created_at        TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_features_created ON features(created_at);

		CREATE TABLE IF NOT EXISTS analytics_events (
			id         TEXT PRIMARY KEY,
			feature_id TEXT REFERENCES features(id) ON DELETE CASCADE,
			event_type TEXT NOT NULL,
			payload    TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_feature ON analytics_events(feature_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateFeature saves a feature and returns it with its id and timestamp.
func (s *Store) CreateFeature(ctx context.Context, in FeatureInput) (*model.Feature, error) {
	f := &model.Feature{
		ID:               s.newID(),
		Title:            in.Title,
		Story:            in.Story,
		GeneratedContent: in.GeneratedContent,
		ScenarioCount:    in.ScenarioCount,
		CreatedAt:        s.now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO features (id, title, story, generated_content, scenario_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Title, f.Story, f.GeneratedContent, f.ScenarioCount, formatTime(f.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("store: create feature: %w", err)
	}
	return f, nil
}

func (s *Store) GetFeature(ctx context.Context, id string) (*model.Feature, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, story, generated_content, scenario_count, created_at
		 FROM features WHERE id = ?`, id)

	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get feature: %w", err)
	}
	return f, nil
}

// ListFeatures returns the newest features first. A non-positive limit
// means the default of 50.
func (s *Store) ListFeatures(ctx context.Context, limit int) ([]model.Feature, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, story, generated_content, scenario_count, created_at
		 FROM features ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list features: %w", err)
	}
	defer rows.Close()

	features := []model.Feature{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan feature: %w", err)
		}
		features = append(features, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list features: %w", err)
	}
	return features, nil
}

// LogAnalyticsEvent appends an event. The payload is stored as JSON.
func (s *Store) LogAnalyticsEvent(ctx context.Context, in EventInput) (*model.AnalyticsEvent, error) {
	if in.EventType == "" {
		return nil, fmt.Errorf("store: event type is required")
	}

	payload := in.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}

	ev := &model.AnalyticsEvent{
		ID:        s.newID(),
		FeatureID: in.FeatureID,
		EventType: in.EventType,
		Payload:   payload,
		CreatedAt: s.now(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analytics_events (id, feature_id, event_type, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.ID, nullString(ev.FeatureID), ev.EventType, string(data), formatTime(ev.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("store: log event: %w", err)
	}
	return ev, nil
}

// ListEvents returns the events of one feature, oldest first. An empty
// featureID lists events that are not tied to a feature.
func (s *Store) ListEvents(ctx context.Context, featureID string) ([]model.AnalyticsEvent, error) {
	query := `SELECT id, feature_id, event_type, payload, created_at
		FROM analytics_events WHERE feature_id = ? ORDER BY created_at, id`
	args := []any{featureID}
	if featureID == "" {
		query = `SELECT id, feature_id, event_type, payload, created_at
		FROM analytics_events WHERE feature_id IS NULL ORDER BY created_at, id`
		args = nil
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	defer rows.Close()

	events := []model.AnalyticsEvent{}
	for rows.Next() {
		var (
			ev        model.AnalyticsEvent
			feature   sql.NullString
			payload   string
			createdAt string
		)
		if err := rows.Scan(&ev.ID, &feature, &ev.EventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		ev.FeatureID = feature.String
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("store: decode payload of event %s: %w", ev.ID, err)
		}
		if ev.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("store: event %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeature(row scanner) (*model.Feature, error) {
	var (
		f         model.Feature
		createdAt string
	)
	if err := row.Scan(&f.ID, &f.Title, &f.Story, &f.GeneratedContent, &f.ScenarioCount, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = t
	return &f, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
