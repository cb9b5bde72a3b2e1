// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/secret-friend/draw"
	"github.com/danielhkuo/secret-friend/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrGroupNotFound = errors.New("group not found in event")
	ErrDuplicate     = errors.New("already exists")
	ErrEventDrawn    = errors.New("event has already been drawn")
	ErrRosterChanged = errors.New("roster changed during draw")
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore keeps events, groups and people in a SQL database.
// Queries use $n placeholders, understood by both lib/pq and modernc sqlite.
type SQLStore struct {
	db *sql.DB
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

var _ draw.Store = (*SQLStore)(nil)

// Events

func (s *SQLStore) CreateEvent(ctx context.Context, name string, groupExclusion bool) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO event (name, group_exclusion, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, name, groupExclusion, models.StatusOpen, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

func (s *SQLStore) GetEvent(ctx context.Context, eventID int64) (models.Event, error) {
	return getEvent(ctx, s.db, eventID)
}

func getEvent(ctx context.Context, q querier, eventID int64) (models.Event, error) {
	var ev models.Event
	var drawnAt sql.NullTime
	err := q.QueryRowContext(ctx, `
		SELECT id, name, group_exclusion, status, drawn_at, created_at
		FROM event
		WHERE id = $1
	`, eventID).Scan(&ev.ID, &ev.Name, &ev.GroupExclusion, &ev.Status, &drawnAt, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("query event: %w", err)
	}
	if drawnAt.Valid {
		ev.DrawnAt = &drawnAt.Time
	}
	return ev, nil
}

// EventUpdate holds the fields to change; nil means unchanged
type EventUpdate struct {
	Name           *string
	GroupExclusion *bool
}

// UpdateEvent changes an open event
func (s *SQLStore) UpdateEvent(ctx context.Context, eventID int64, upd EventUpdate) error {
	var name sql.NullString
	if upd.Name != nil {
		name = sql.NullString{String: *upd.Name, Valid: true}
	}
	var exclusion sql.NullBool
	if upd.GroupExclusion != nil {
		exclusion = sql.NullBool{Bool: *upd.GroupExclusion, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE event
		SET name = COALESCE($1, name), group_exclusion = COALESCE($2, group_exclusion)
		WHERE id = $3 AND status = $4
	`, name, exclusion, eventID, models.StatusOpen)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return s.explainNoRows(ctx, s.db, res, eventID)
}

func (s *SQLStore) DeleteEvent(ctx context.Context, eventID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM event WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Groups

func (s *SQLStore) CreateGroup(ctx context.Context, eventID int64, name string) (int64, error) {
	var id int64
	err := s.withOpenEvent(ctx, eventID, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO event_group (event_id, name)
			VALUES ($1, $2)
			RETURNING id
		`, eventID, name).Scan(&id)
		if isUniqueViolation(err) {
			return fmt.Errorf("group %q: %w", name, ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLStore) ListGroups(ctx context.Context, eventID int64) ([]models.Group, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name
		FROM event_group
		WHERE event_id = $1
		ORDER BY id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group and, through the cascade, its people
func (s *SQLStore) DeleteGroup(ctx context.Context, eventID, groupID int64) error {
	return s.withOpenEvent(ctx, eventID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM event_group WHERE id = $1 AND event_id = $2
		`, groupID, eventID)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		if n == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

// People

type PersonInput struct {
	GroupID   int64
	Name      string
	LookupKey string
}

func (s *SQLStore) CreatePerson(ctx context.Context, eventID int64, in PersonInput) (int64, error) {
	var id int64
	err := s.withOpenEvent(ctx, eventID, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM event_group WHERE id = $1 AND event_id = $2)
		`, in.GroupID, eventID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check group: %w", err)
		}
		if !exists {
			return ErrGroupNotFound
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO person (event_id, group_id, name, lookup_key, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, eventID, in.GroupID, in.Name, in.LookupKey, time.Now()).Scan(&id)
		if isUniqueViolation(err) {
			return fmt.Errorf("lookup key: %w", ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("insert person: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// PersonFilter selects people of one event. Nil fields do not filter.
type PersonFilter struct {
	EventID   int64
	ID        *int64
	GroupID   *int64
	LookupKey *string
}

func (f PersonFilter) where() (string, []any) {
	clauses := []string{"event_id = $1"}
	args := []any{f.EventID}

	add := func(column string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if f.ID != nil {
		add("id", *f.ID)
	}
	if f.GroupID != nil {
		add("group_id", *f.GroupID)
	}
	if f.LookupKey != nil {
		add("lookup_key", *f.LookupKey)
	}

	return strings.Join(clauses, " AND "), args
}

func (s *SQLStore) ListPeople(ctx context.Context, filter PersonFilter) ([]models.Person, error) {
	where, args := filter.where()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, group_id, name, lookup_key, recipient_token, created_at
		FROM person
		WHERE `+where+`
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		var token sql.NullString
		if err := rows.Scan(&p.ID, &p.EventID, &p.GroupID, &p.Name, &p.LookupKey, &token, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.RecipientToken = token.String
		p.HasRecipient = token.Valid && token.String != ""
		people = append(people, p)
	}
	return people, rows.Err()
}

// FindPerson returns the single person matching filter
func (s *SQLStore) FindPerson(ctx context.Context, filter PersonFilter) (models.Person, error) {
	people, err := s.ListPeople(ctx, filter)
	if err != nil {
		return models.Person{}, err
	}
	if len(people) == 0 {
		return models.Person{}, ErrNotFound
	}
	return people[0], nil
}

func (s *SQLStore) DeletePerson(ctx context.Context, eventID, personID int64) error {
	return s.withOpenEvent(ctx, eventID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM person WHERE id = $1 AND event_id = $2
		`, personID, eventID)
		if err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Draw persistence

func (s *SQLStore) FetchEventFlags(ctx context.Context, eventID int64) (draw.EventFlags, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return draw.EventFlags{}, err
	}
	return draw.EventFlags{GroupExclusion: ev.GroupExclusion}, nil
}

// FetchRoster returns a snapshot of the event's people in insertion order
func (s *SQLStore) FetchRoster(ctx context.Context, eventID int64) ([]draw.Participant, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id FROM person WHERE event_id = $1 ORDER BY id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	roster := []draw.Participant{}
	for rows.Next() {
		var p draw.Participant
		if err := rows.Scan(&p.ID, &p.GroupID); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		roster = append(roster, p)
	}
	return roster, rows.Err()
}

// WriteRecipientToken stores one token, scoped to the event
func (s *SQLStore) WriteRecipientToken(ctx context.Context, tx *sql.Tx, participantID, eventID int64, token string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE person SET recipient_token = $1 WHERE id = $2 AND event_id = $3
	`, token, participantID, eventID)
	if err != nil {
		return fmt.Errorf("write recipient token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write recipient token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %d: %w", participantID, ErrRosterChanged)
	}
	return nil
}

// ApplyDraw marks the event drawn at drawnAt and writes every token in one
// transaction. The status transition only succeeds from open, so a draw is
// applied once.
func (s *SQLStore) ApplyDraw(ctx context.Context, eventID int64, drawnAt time.Time, tokens []draw.RecipientToken) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE event SET status = $1, drawn_at = $2
		WHERE id = $3 AND status = $4
	`, models.StatusDrawn, drawnAt, eventID, models.StatusOpen)
	if err != nil {
		return fmt.Errorf("mark event drawn: %w", err)
	}
	if err := s.explainNoRows(ctx, tx, res, eventID); err != nil {
		return err
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM person WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return fmt.Errorf("count people: %w", err)
	}
	if count != len(tokens) {
		return fmt.Errorf("%w: %d people, %d tokens", ErrRosterChanged, count, len(tokens))
	}

	for _, t := range tokens {
		if err := s.WriteRecipientToken(ctx, tx, t.ParticipantID, eventID, t.Token); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draw: %w", err)
	}
	return nil
}

// ClearDraw removes every token of the event and reopens it
func (s *SQLStore) ClearDraw(ctx context.Context, eventID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE event SET status = $1, drawn_at = NULL WHERE id = $2
	`, models.StatusOpen, eventID)
	if err != nil {
		return fmt.Errorf("reopen event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reopen event: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE person SET recipient_token = NULL WHERE event_id = $1
	`, eventID)
	if err != nil {
		return fmt.Errorf("clear recipient tokens: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// beforeMembershipWrite runs once the event row is held open, ahead of fn
var beforeMembershipWrite = func() {}

// withOpenEvent runs fn in a transaction that holds the event row while it is
// open. A draw committing first makes the guard fail with ErrEventDrawn; a
// draw starting later waits for the commit and sees the changed roster.
func (s *SQLStore) withOpenEvent(ctx context.Context, eventID int64, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE event SET status = status WHERE id = $1 AND status = $2
	`, eventID, models.StatusOpen)
	if err != nil {
		return fmt.Errorf("hold event: %w", err)
	}
	if err := s.explainNoRows(ctx, tx, res, eventID); err != nil {
		return err
	}

	beforeMembershipWrite()
	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// explainNoRows turns a zero-row status-guarded update into ErrNotFound or ErrEventDrawn
func (s *SQLStore) explainNoRows(ctx context.Context, q querier, res sql.Result, eventID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := getEvent(ctx, q, eventID); err != nil {
		return err
	}
	return ErrEventDrawn
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	return errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
