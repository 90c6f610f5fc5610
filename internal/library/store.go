// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists each user's saved papers and search history in
// a local SQLite database.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

const (
	defaultPath         = "data/scholarsync.db"
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	// timeLayout is fixed width so stored timestamps sort as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrAlreadySaved is returned when a user saves the same paper twice.
var ErrAlreadySaved = errors.New("paper already saved")

// Store manages the library SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at cfg.Path and creates the
// schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saved_papers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			url TEXT,
			source TEXT,
			saved_at TEXT NOT NULL,
			notes TEXT,
			tags TEXT,
			UNIQUE(user_id, paper_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_papers_user ON saved_papers(user_id, saved_at)`,
		`CREATE TABLE IF NOT EXISTS search_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			filters TEXT,
			results_count INTEGER NOT NULL DEFAULT 0,
			searched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id, searched_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SavePaper bookmarks a paper for p.UserID. The ID and SavedAt fields are
// assigned by the store and returned in the stored copy.
func (s *Store) SavePaper(ctx context.Context, p types.SavedPaper) (types.SavedPaper, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return types.SavedPaper{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(p.PaperID) == "" {
		return types.SavedPaper{}, fmt.Errorf("paper id is required")
	}

	p.ID = uuid.NewString()
	p.SavedAt = s.now().UTC()
	if p.Authors == nil {
		p.Authors = []string{}
	}

	authorsJSON, _ := json.Marshal(p.Authors)
	var tags any
	if p.Tags != nil {
		data, _ := json.Marshal(p.Tags)
		tags = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_papers (id, user_id, paper_id, title, authors, abstract, url, source, saved_at, notes, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.PaperID, p.Title, string(authorsJSON), p.Abstract,
		p.URL, p.Source, p.SavedAt.Format(timeLayout), p.Notes, tags,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.SavedPaper{}, ErrAlreadySaved
		}
		return types.SavedPaper{}, fmt.Errorf("inserting saved paper: %w", err)
	}
	return p, nil
}

// DeleteSavedPaper removes a bookmark. Deleting a paper that is not saved
// is not an error.
func (s *Store) DeleteSavedPaper(ctx context.Context, userID, paperID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_papers WHERE user_id = ? AND paper_id = ?`, userID, paperID)
	if err != nil {
		return fmt.Errorf("deleting saved paper: %w", err)
	}
	return nil
}

// ListSavedPapers returns the user's saved papers, newest first.
func (s *Store) ListSavedPapers(ctx context.Context, userID string) ([]types.SavedPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, paper_id, title, authors, abstract, url, source, saved_at, notes, tags
		 FROM saved_papers WHERE user_id = ?
		 ORDER BY saved_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying saved papers: %w", err)
	}
	defer rows.Close()

	papers := []types.SavedPaper{}
	for rows.Next() {
		var (
			p                            types.SavedPaper
			title, abstract, url, source sql.NullString
			authorsJSON, tagsJSON, notes sql.NullString
			savedAt                      string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PaperID, &title, &authorsJSON, &abstract,
			&url, &source, &savedAt, &notes, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scanning saved paper: %w", err)
		}
		p.Title, p.Abstract, p.URL, p.Source = title.String, abstract.String, url.String, source.String
		p.Authors = []string{}
		if authorsJSON.Valid {
			if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding saved paper %s authors: %w", p.PaperID, err)
			}
		}
		if tagsJSON.Valid {
			if err := json.Unmarshal([]byte(tagsJSON.String), &p.Tags); err != nil {
				return nil, fmt.Errorf("decoding saved paper %s tags: %w", p.PaperID, err)
			}
		}
		if notes.Valid {
			n := notes.String
			p.Notes = &n
		}
		if p.SavedAt, err = time.Parse(timeLayout, savedAt); err != nil {
			return nil, fmt.Errorf("decoding saved paper %s saved_at: %w", p.PaperID, err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// RecordSearch appends an entry to the user's search history.
func (s *Store) RecordSearch(ctx context.Context, userID, query string, filters *types.SearchFilters, resultsCount int) (types.SearchHistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return types.SearchHistoryEntry{}, fmt.Errorf("user id is required")
	}

	entry := types.SearchHistoryEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Query:        query,
		Filters:      filters,
		ResultsCount: resultsCount,
		SearchedAt:   s.now().UTC(),
	}

	var filtersJSON any
	if filters != nil {
		data, err := json.Marshal(filters)
		if err != nil {
			return types.SearchHistoryEntry{}, fmt.Errorf("encoding filters: %w", err)
		}
		filtersJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (id, user_id, query, filters, results_count, searched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Query, filtersJSON, entry.ResultsCount,
		entry.SearchedAt.Format(timeLayout),
	)
	if err != nil {
		return types.SearchHistoryEntry{}, fmt.Errorf("inserting search history: %w", err)
	}
	return entry, nil
}

// ListHistory returns up to limit of the user's most recent searches. A
// non-positive limit means 20; limits above 100 are capped.
func (s *Store) ListHistory(ctx context.Context, userID string, limit int) ([]types.SearchHistoryEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, query, filters, results_count, searched_at
		 FROM search_history WHERE user_id = ?
		 ORDER BY searched_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	entries := []types.SearchHistoryEntry{}
	for rows.Next() {
		var (
			e           types.SearchHistoryEntry
			filtersJSON sql.NullString
			searchedAt  string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Query, &filtersJSON, &e.ResultsCount, &searchedAt); err != nil {
			return nil, fmt.Errorf("scanning search history: %w", err)
		}
		if filtersJSON.Valid {
			var f types.SearchFilters
			if err := json.Unmarshal([]byte(filtersJSON.String), &f); err != nil {
				return nil, fmt.Errorf("decoding search history %s filters: %w", e.ID, err)
			}
			e.Filters = &f
		}
		if e.SearchedAt, err = time.Parse(timeLayout, searchedAt); err != nil {
			return nil, fmt.Errorf("decoding search history %s searched_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
