// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-tally/election"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/poll"
)

// Store is the audit record of every poll: its candidates, each accepted
// ballot in submission order, and the final result
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SavePoll records a newly opened poll and its candidates
func (s *Store) SavePoll(ctx context.Context, snap poll.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, name, description, creator, method, winners, time_limit_seconds, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, snap.ID, snap.Name, snap.Description, snap.Creator, string(snap.Method), snap.Winners,
		int64(snap.TimeLimit/time.Second), models.StatusOpen, snap.OpenedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for i, label := range snap.Candidates {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO candidate (poll_id, position, label)
			VALUES ($1, $2, $3)
		`, snap.ID, i, label)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit poll: %w", err)
	}
	return nil
}

// SaveBallot records one accepted ballot at its column position
func (s *Store) SaveBallot(ctx context.Context, pollID, voterID string, position int, ballot []int) (string, error) {
	ballotID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ballot (id, poll_id, voter_id, position, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ballotID, pollID, voterID, position, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert ballot: %w", err)
	}

	for c, value := range ballot {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ballot_entry (ballot_id, candidate_position, value)
			VALUES ($1, $2, $3)
		`, ballotID, c, value)
		if err != nil {
			return "", fmt.Errorf("failed to insert ballot entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit ballot: %w", err)
	}
	return ballotID, nil
}

// MarkClosed closes a poll without a result, for polls that cannot be tabulated
func (s *Store) MarkClosed(ctx context.Context, pollID string, closedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE poll SET status = $1, closed_at = $2 WHERE id = $3
	`, models.StatusClosed, closedAt.UTC(), pollID)
	if err != nil {
		return fmt.Errorf("failed to close poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResult stores the tabulation and closes the poll in one transaction.
// It satisfies poll.ResultStore.
func (s *Store) SaveResult(ctx context.Context, snap poll.Snapshot, res *election.Result) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	snapshotID := uuid.NewString()
	computedAt := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO result_snapshot (id, poll_id, method, status, inputs_hash, computed_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, snapshotID, snap.ID, string(res.Method), res.Status, InputsHash(snap), computedAt, string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE poll
		SET status = $1, closed_at = $2, final_snapshot_id = $3
		WHERE id = $4
	`, models.StatusClosed, computedAt, snapshotID, snap.ID)
	if err != nil {
		return "", fmt.Errorf("failed to close poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit result: %w", err)
	}
	return snapshotID, nil
}

// GetResult returns the final result of a closed poll
func (s *Store) GetResult(ctx context.Context, pollID string) (*models.ResultSnapshot, error) {
	var snapshot models.ResultSnapshot
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.poll_id, r.method, r.status, r.inputs_hash, r.computed_at, r.payload
		FROM result_snapshot r
		JOIN poll p ON p.final_snapshot_id = r.id
		WHERE p.id = $1
	`, pollID).Scan(
		&snapshot.ID, &snapshot.PollID, &snapshot.Method, &snapshot.Status,
		&snapshot.InputsHash, &snapshot.ComputedAt, &payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snapshot.Result = &election.Result{}
	if err := json.Unmarshal([]byte(payload), snapshot.Result); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot payload: %w", err)
	}
	return &snapshot, nil
}

// GetPollSummary returns a poll's stored metadata, open or closed
func (s *Store) GetPollSummary(ctx context.Context, pollID string) (*models.Poll, error) {
	var p models.Poll
	var description, creator sql.NullString
	var seconds int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, creator, method, winners, time_limit_seconds,
		       status, opened_at, closed_at, final_snapshot_id
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&p.ID, &p.Name, &description, &creator, &p.Method, &p.Winners, &seconds,
		&p.Status, &p.OpenedAt, &p.ClosedAt, &p.FinalSnapshotID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	p.Description = description.String
	p.Creator = creator.String
	p.ClosesAt = p.OpenedAt.Add(time.Duration(seconds) * time.Second)

	p.Candidates, err = s.candidates(ctx, pollID)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot WHERE poll_id = $1
	`, pollID).Scan(&p.BallotCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count ballots: %w", err)
	}
	return &p, nil
}

// LoadOpenPolls rebuilds every poll still marked open, ballots included
func (s *Store) LoadOpenPolls(ctx context.Context) ([]poll.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, creator, method, winners, time_limit_seconds, opened_at
		FROM poll
		WHERE status = $1
		ORDER BY opened_at, id
	`, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to query open polls: %w", err)
	}

	var snaps []poll.Snapshot
	for rows.Next() {
		var snap poll.Snapshot
		var description, creator sql.NullString
		var method string
		var seconds int64
		if err := rows.Scan(&snap.ID, &snap.Name, &description, &creator, &method,
			&snap.Winners, &seconds, &snap.OpenedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		snap.Description = description.String
		snap.Creator = creator.String
		snap.Method = election.Method(method)
		snap.TimeLimit = time.Duration(seconds) * time.Second
		snaps = append(snaps, snap)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read open polls: %w", err)
	}

	// sqlite runs with a single connection, so each query is drained before the next
	for i := range snaps {
		snaps[i].Candidates, err = s.candidates(ctx, snaps[i].ID)
		if err != nil {
			return nil, err
		}
		snaps[i].Ballots, snaps[i].Voters, err = s.ballots(ctx, snaps[i].ID, len(snaps[i].Candidates))
		if err != nil {
			return nil, err
		}
	}
	return snaps, nil
}

// Restore loads the open polls into the registry. A poll that can no longer
// be rebuilt is marked closed so it is not retried on every start.
func (s *Store) Restore(ctx context.Context, registry *poll.Registry) (int, error) {
	snaps, err := s.LoadOpenPolls(ctx)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, snap := range snaps {
		p, err := poll.FromSnapshot(snap)
		if err == nil {
			err = registry.Restore(p)
		}
		if err != nil {
			slog.Warn("failed to restore poll", "poll_id", snap.ID, "error", err)
			if err := s.MarkClosed(ctx, snap.ID, time.Now()); err != nil {
				slog.Error("failed to retire poll", "poll_id", snap.ID, "error", err)
			}
			continue
		}
		restored++
	}
	return restored, nil
}

func (s *Store) candidates(ctx context.Context, pollID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label FROM candidate WHERE poll_id = $1 ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *Store) ballots(ctx context.Context, pollID string, candidates int) (election.Matrix, []string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.voter_id, e.candidate_position, e.value
		FROM ballot b
		JOIN ballot_entry e ON e.ballot_id = b.id
		WHERE b.poll_id = $1
		ORDER BY b.position, e.candidate_position
	`, pollID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	m := election.NewMatrix(candidates)
	var voters []string
	var column []int
	flush := func() {
		if column != nil {
			m = m.AppendColumn(column)
		}
	}

	for rows.Next() {
		var voter string
		var c, value int
		if err := rows.Scan(&voter, &c, &value); err != nil {
			return nil, nil, fmt.Errorf("failed to scan ballot entry: %w", err)
		}
		if c < 0 || c >= candidates {
			return nil, nil, fmt.Errorf("ballot entry for candidate %d of %d in poll %s", c, candidates, pollID)
		}
		if len(voters) == 0 || voters[len(voters)-1] != voter {
			flush()
			voters = append(voters, voter)
			column = make([]int, candidates)
		}
		column[c] = value
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read ballots: %w", err)
	}
	flush()
	return m, voters, nil
}

// InputsHash fingerprints the ballots a result was computed from
func InputsHash(snap poll.Snapshot) string {
	h := sha256.New()
	for v, voter := range snap.Voters {
		h.Write([]byte(voter))
		for _, value := range snap.Ballots.Column(v) {
			h.Write([]byte{','})
			h.Write([]byte(strconv.Itoa(value)))
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
