// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-vote/admission"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
)

// pqUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

var ErrCandidateElectionMismatch = errors.New("candidate belongs to another election")

// Store is the SQL store behind vote admission, results and auditing.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// rebind rewrites ? placeholders to $N for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != db.Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RunInTx implements admission.Store.
func (s *Store) RunInTx(ctx context.Context, fn func(admission.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{s: s, q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return admission.ErrConflict
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// VoteByIdentity implements admission.Store.
func (s *Store) VoteByIdentity(ctx context.Context, electionID, identityToken string) (admission.ExistingVote, error) {
	return s.voteByIdentity(ctx, s.db, electionID, identityToken)
}

// tx implements admission.Tx on an open transaction.
type tx struct {
	s *Store
	q querier
}

func (t *tx) CandidateForVote(ctx context.Context, candidateID string) (models.Candidate, models.Election, error) {
	var c models.Candidate
	var e models.Election
	var opensAt, closesAt int64
	err := t.q.QueryRowContext(ctx, t.s.rebind(`
		SELECT c.id, c.election_id, c.display_name, c.tally,
		       e.id, e.name, e.opens_at, e.closes_at
		FROM candidate c
		JOIN election e ON e.id = c.election_id
		WHERE c.id = ?
	`), candidateID).Scan(&c.ID, &c.ElectionID, &c.DisplayName, &c.Tally, &e.ID, &e.Name, &opensAt, &closesAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, models.Election{}, admission.ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, models.Election{}, fmt.Errorf("query candidate: %w", err)
	}
	e.OpensAt = fromMillis(opensAt)
	e.ClosesAt = fromMillis(closesAt)
	return c, e, nil
}

func (t *tx) InsertVote(ctx context.Context, rec models.VoteRecord) (bool, error) {
	res, err := t.q.ExecContext(ctx, t.s.rebind(`
		INSERT INTO vote_record (id, election_id, identity_token, identity_source, candidate_id, cast_at, ip_hash, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (election_id, identity_token) DO NOTHING
	`), rec.ID, rec.ElectionID, rec.IdentityToken, rec.IdentitySource, rec.CandidateID, toMillis(rec.CastAt), rec.IPHash, rec.UserAgent)
	if err != nil {
		if isUniqueViolation(err) {
			return false, admission.ErrConflict
		}
		return false, fmt.Errorf("insert vote record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert vote record: %w", err)
	}
	return n == 1, nil
}

func (t *tx) VoteByIdentity(ctx context.Context, electionID, identityToken string) (admission.ExistingVote, error) {
	return t.s.voteByIdentity(ctx, t.q, electionID, identityToken)
}

func (t *tx) LatestVoteByIdentity(ctx context.Context, identityToken string) (admission.ExistingVote, error) {
	return t.s.scanVote(t.q.QueryRowContext(ctx, t.s.rebind(voteSelect+`
		WHERE v.identity_token = ?
		ORDER BY v.cast_at DESC, v.id DESC
		LIMIT 1
	`), identityToken))
}

func (t *tx) IncrementTally(ctx context.Context, candidateID string) (int64, error) {
	var tally int64
	err := t.q.QueryRowContext(ctx, t.s.rebind(`
		UPDATE candidate SET tally = tally + 1 WHERE id = ? RETURNING tally
	`), candidateID).Scan(&tally)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, admission.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment tally: %w", err)
	}
	return tally, nil
}

// voteSelect reads a vote record with its candidate's name.
const voteSelect = `
		SELECT v.id, v.election_id, v.identity_token, v.identity_source, v.candidate_id, v.cast_at,
		       COALESCE(v.ip_hash, ''), COALESCE(v.user_agent, ''), c.display_name
		FROM vote_record v
		JOIN candidate c ON c.id = v.candidate_id`

func (s *Store) voteByIdentity(ctx context.Context, q querier, electionID, identityToken string) (admission.ExistingVote, error) {
	return s.scanVote(q.QueryRowContext(ctx, s.rebind(voteSelect+`
		WHERE v.election_id = ? AND v.identity_token = ?
	`), electionID, identityToken))
}

func (s *Store) scanVote(row *sql.Row) (admission.ExistingVote, error) {
	var v admission.ExistingVote
	var castAt int64
	err := row.Scan(
		&v.Record.ID, &v.Record.ElectionID, &v.Record.IdentityToken, &v.Record.IdentitySource,
		&v.Record.CandidateID, &castAt, &v.Record.IPHash, &v.Record.UserAgent, &v.CandidateName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return admission.ExistingVote{}, admission.ErrNotFound
	}
	if err != nil {
		return admission.ExistingVote{}, fmt.Errorf("query vote by identity: %w", err)
	}
	v.Record.CastAt = fromMillis(castAt)
	return v, nil
}

// UpsertElection creates an election or updates its name and window.
func (s *Store) UpsertElection(ctx context.Context, e models.Election) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO election (id, name, opens_at, closes_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			opens_at = excluded.opens_at,
			closes_at = excluded.closes_at
	`), e.ID, e.Name, toMillis(e.OpensAt), toMillis(e.ClosesAt))
	if err != nil {
		return fmt.Errorf("upsert election %s: %w", e.ID, err)
	}
	return nil
}

// UpsertCandidate creates a candidate or renames it. The tally is never touched.
// Returns ErrCandidateElectionMismatch if the id is taken in another election.
func (s *Store) UpsertCandidate(ctx context.Context, c models.Candidate) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO candidate (id, election_id, display_name, tally, created_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name
		WHERE candidate.election_id = excluded.election_id
	`), c.ID, c.ElectionID, c.DisplayName, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert candidate %s: %w", c.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("upsert candidate %s: %w", c.ID, ErrCandidateElectionMismatch)
	}
	return nil
}

// Election returns one election. Returns admission.ErrNotFound if it does not exist.
func (s *Store) Election(ctx context.Context, id string) (models.Election, error) {
	var e models.Election
	var opensAt, closesAt int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, opens_at, closes_at FROM election WHERE id = ?
	`), id).Scan(&e.ID, &e.Name, &opensAt, &closesAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, admission.ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("query election: %w", err)
	}
	e.OpensAt = fromMillis(opensAt)
	e.ClosesAt = fromMillis(closesAt)
	return e, nil
}

// ElectionIDs lists every election id.
func (s *Store) ElectionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM election ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query elections: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan election: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Candidates lists an election's candidates by name.
func (s *Store) Candidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	return s.candidates(ctx, electionID, "display_name ASC, id ASC")
}

// Standings lists an election's candidates by tally, highest first.
func (s *Store) Standings(ctx context.Context, electionID string) ([]models.Candidate, error) {
	return s.candidates(ctx, electionID, "tally DESC, display_name ASC, id ASC")
}

func (s *Store) candidates(ctx context.Context, electionID, orderBy string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, election_id, display_name, tally
		FROM candidate
		WHERE election_id = ?
		ORDER BY `+orderBy), electionID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.DisplayName, &c.Tally); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	return candidates, nil
}

// ListVotes returns every vote in an election, newest first.
func (s *Store) ListVotes(ctx context.Context, electionID string) ([]models.VoteDetail, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT v.id, v.candidate_id, c.display_name, v.identity_source, v.identity_token,
		       COALESCE(v.ip_hash, ''), COALESCE(v.user_agent, ''), v.cast_at
		FROM vote_record v
		JOIN candidate c ON c.id = v.candidate_id
		WHERE v.election_id = ?
		ORDER BY v.cast_at DESC, v.id ASC
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.VoteDetail{}
	for rows.Next() {
		var d models.VoteDetail
		var castAt int64
		if err := rows.Scan(&d.VoteID, &d.CandidateID, &d.CandidateName, &d.IdentitySource,
			&d.IdentityToken, &d.IPHash, &d.UserAgent, &castAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		d.CastAt = fromMillis(castAt)
		votes = append(votes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	return votes, nil
}

// TallyDrift lists candidates whose cached tally differs from their vote record count.
func (s *Store) TallyDrift(ctx context.Context, electionID string) ([]models.TallyDrift, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT c.id, c.display_name, c.tally, COUNT(v.id)
		FROM candidate c
		LEFT JOIN vote_record v ON v.candidate_id = c.id
		WHERE c.election_id = ?
		GROUP BY c.id, c.display_name, c.tally
		HAVING c.tally <> COUNT(v.id)
		ORDER BY c.id
	`), electionID)
	if err != nil {
		return nil, fmt.Errorf("query tally drift: %w", err)
	}
	defer rows.Close()

	drift := []models.TallyDrift{}
	for rows.Next() {
		var d models.TallyDrift
		if err := rows.Scan(&d.CandidateID, &d.DisplayName, &d.Tally, &d.Recorded); err != nil {
			return nil, fmt.Errorf("scan tally drift: %w", err)
		}
		drift = append(drift, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tally drift: %w", err)
	}
	return drift, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

var _ admission.Store = (*Store)(nil)
