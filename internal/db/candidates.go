package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-ranker/internal/source"
	"github.com/jonathan/candidate-ranker/internal/types"
)

// DefaultListLimit bounds the rows returned by one ListCandidates call.
const DefaultListLimit = 1000

const candidateColumns = `id,
	COALESCE(name, ''),
	COALESCE(email, ''),
	COALESCE(phone, ''),
	COALESCE(education, ''),
	COALESCE(resume_text, ''),
	COALESCE(skills, ''),
	COALESCE(experience_years, 0)::float8,
	COALESCE(match_score, 0)::float8`

// ListCandidates returns up to limit candidates ordered by id.
func (db *DB) ListCandidates(ctx context.Context, limit, offset int) ([]types.CandidateRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	records := []types.CandidateRecord{}
	for rows.Next() {
		rec, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return records, nil
}

// GetCandidate returns the candidate with id, or nil when there is none.
func (db *DB) GetCandidate(ctx context.Context, id int64) (*types.CandidateRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`,
		id,
	)
	rec, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}
	return rec, nil
}

// InsertCandidate stores rec and returns its new id.
func (db *DB) InsertCandidate(ctx context.Context, rec *types.CandidateRecord) (int64, error) {
	skills, err := json.Marshal(rec.Skills)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal skills: %w", err)
	}

	var id int64
	err = db.pool.QueryRow(ctx,
		`INSERT INTO candidates (name, email, phone, education, resume_text, skills, experience_years, match_score)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)
		 RETURNING id`,
		rec.Name, rec.Email, rec.Phone, rec.Education, rec.ResumeText, string(skills),
		int(rec.ExperienceYears), rec.MatchScore,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert candidate: %w", err)
	}
	return id, nil
}

func scanCandidate(row pgx.Row) (*types.CandidateRecord, error) {
	var rec types.CandidateRecord
	var skills string
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Phone,
		&rec.Education,
		&rec.ResumeText,
		&skills,
		&rec.ExperienceYears,
		&rec.MatchScore,
	)
	if err != nil {
		return nil, err
	}
	rec.Skills = DecodeSkills(skills)
	return &rec, nil
}

// DecodeSkills parses the JSON text skills column. Empty or malformed values yield no skills.
func DecodeSkills(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil
	}
	return skills
}

// Source adapts DB to source.Source.
type Source struct {
	db       *DB
	pageSize int
}

// NewSource creates a candidate source that lists the table in pages of pageSize rows.
// pageSize <= 0 means DefaultListLimit.
func NewSource(db *DB, pageSize int) *Source {
	if pageSize <= 0 {
		pageSize = DefaultListLimit
	}
	return &Source{db: db, pageSize: pageSize}
}

// List returns every candidate, reading the table page by page.
func (s *Source) List(ctx context.Context) ([]types.CandidateRecord, error) {
	return listAll(ctx, s.pageSize, s.db.ListCandidates)
}

// pageFunc fetches up to limit records starting at offset.
type pageFunc func(ctx context.Context, limit, offset int) ([]types.CandidateRecord, error)

// listAll calls fetch until it returns a short page.
func listAll(ctx context.Context, pageSize int, fetch pageFunc) ([]types.CandidateRecord, error) {
	records := []types.CandidateRecord{}
	for offset := 0; ; offset += pageSize {
		page, err := fetch(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < pageSize {
			return records, nil
		}
	}
}

// Get returns one candidate, or source.ErrNotFound.
func (s *Source) Get(ctx context.Context, id int64) (*types.CandidateRecord, error) {
	rec, err := s.db.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, source.ErrNotFound
	}
	return rec, nil
}
