// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/models"
)

const standColumns = `id, name, kind, max_capacity, queue_counter, arrivals, served,
	service_seconds, servers, lat, lon, last_served_at, created_at`

const reservationColumns = `reservation_id, stand_id, ticket, reservation_datetime,
	reservation_name, source, status, code, token, ip_hash, closed_at`

// Store keeps stands and their reservations consistent. Every operation runs
// in one transaction that first applies the time decay of the stands it touches.
type Store struct {
	db       *sql.DB
	codeSalt string
	lock     string
	now      func() time.Time
}

// NewStore wraps an open database. dbType selects row locking
// ("postgres" locks stand rows; SQLite serialises writers itself).
func NewStore(db *sql.DB, dbType, codeSalt string) *Store {
	s := &Store{db: db, codeSalt: codeSalt, now: time.Now}
	if dbType == "postgres" {
		s.lock = " FOR UPDATE"
	}
	return s
}

// SetClock replaces the time source, for tests and simulations
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// CreateStand inserts a new service point with an empty line
func (s *Store) CreateStand(ctx context.Context, req models.CreateStandRequest) (models.Stand, error) {
	if strings.TrimSpace(req.Name) == "" || !models.ValidKind(req.Kind) ||
		req.MaxCapacity <= 0 || req.ServiceSeconds <= 0 {
		return models.Stand{}, ErrInvalidStand
	}
	servers := req.Servers
	if servers < 1 {
		servers = 1
	}

	id, err := auth.GenerateID(8)
	if err != nil {
		return models.Stand{}, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM stand WHERE name = $1", req.Name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check stand name: %w", err)
		}
		if exists > 0 {
			return ErrDuplicateStand
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stand (id, name, kind, max_capacity, queue_counter, arrivals, served,
				service_seconds, servers, lat, lon, last_served_at, created_at)
			VALUES ($1, $2, $3, $4, 0, 0, 0, $5, $6, $7, $8, $9, $10)
		`, id, req.Name, req.Kind, req.MaxCapacity, req.ServiceSeconds, servers, req.Lat, req.Lon, now, now)
		if isUniqueViolation(err) {
			// A concurrent create won the race for this name
			return ErrDuplicateStand
		}
		if err != nil {
			return fmt.Errorf("failed to insert stand: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Stand{}, err
	}

	slog.Info("stand created", "stand_id", id, "name", req.Name, "kind", req.Kind)

	return s.GetStand(ctx, id)
}

// EnsureStands inserts the given stands when the stand table is empty.
// It returns how many were created.
func (s *Store) EnsureStands(ctx context.Context, stands []models.CreateStandRequest) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stand").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stands: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for i, st := range stands {
		if _, err := s.CreateStand(ctx, st); err != nil {
			return i, fmt.Errorf("failed to seed stand %q: %w", st.Name, err)
		}
	}
	return len(stands), nil
}

// GetStand returns a stand after applying its decay
func (s *Store) GetStand(ctx context.Context, id string) (models.Stand, error) {
	var st models.Stand
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		var err error
		st, _, err = s.settled(ctx, tx, id, now)
		return err
	})
	return st, err
}

// ListStands returns all stands of a kind (all kinds when empty), ordered by name
func (s *Store) ListStands(ctx context.Context, kind string) ([]models.Stand, error) {
	stands := []models.Stand{}
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		ids, err := s.standIDs(ctx, tx, kind)
		if err != nil {
			return err
		}
		for _, id := range ids {
			st, _, err := s.settled(ctx, tx, id, now)
			if err != nil {
				return err
			}
			stands = append(stands, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stands, nil
}

// DecayAll applies time decay to every stand and returns how many people
// left their lines.
func (s *Store) DecayAll(ctx context.Context) (int, error) {
	total := 0
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		ids, err := s.standIDs(ctx, tx, "")
		if err != nil {
			return err
		}
		for _, id := range ids {
			st, err := s.loadStand(ctx, tx, id)
			if err != nil {
				return err
			}
			line := LineOf(st)
			k := line.Decay(now)
			if err := s.persist(ctx, tx, st, line, k, now); err != nil {
				return err
			}
			total += k
		}
		return nil
	})
	return total, err
}

// Book issues the next ticket at a stand to a named person
func (s *Store) Book(ctx context.Context, standID, name, ipHash string) (models.Reservation, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Reservation{}, "", ErrNameRequired
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		return models.Reservation{}, "", err
	}
	token, err := auth.GenerateReservationToken()
	if err != nil {
		return models.Reservation{}, "", err
	}
	code := auth.GenerateReservationCode(id, s.codeSalt)

	var res models.Reservation
	err = s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		st, line, err := s.settled(ctx, tx, standID, now)
		if err != nil {
			return err
		}

		ticket, err := line.Admit(1, now)
		if err != nil {
			return err
		}

		var ip *string
		if ipHash != "" {
			ip = &ipHash
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reservation (reservation_id, stand_id, ticket, reservation_datetime,
				reservation_name, source, status, code, token, ip_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, id, st.ID, ticket, now, name, models.SourceBooking, models.StatusWaiting, code, token, ip)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		if err := s.persist(ctx, tx, st, line, 0, now); err != nil {
			return err
		}

		ahead := line.Waiting - 1
		res = models.Reservation{
			ID:          id,
			StandID:     st.ID,
			Ticket:      ticket,
			Datetime:    now,
			Name:        name,
			Source:      models.SourceBooking,
			Status:      models.StatusWaiting,
			Code:        &code,
			Ahead:       ahead,
			WaitSeconds: line.TicketWait(ahead, now).Seconds(),
		}
		return nil
	})
	if err != nil {
		return models.Reservation{}, "", err
	}

	slog.Info("reservation booked", "reservation_id", id, "stand_id", standID, "ticket", res.Ticket)
	return res, token, nil
}

// Arrive adds count anonymous walk-ins to a stand's line
func (s *Store) Arrive(ctx context.Context, standID string, count int) (models.Stand, []int, error) {
	var st models.Stand
	var tickets []int
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		var line *Line
		var err error
		st, line, err = s.settled(ctx, tx, standID, now)
		if err != nil {
			return err
		}

		first, err := line.Admit(count, now)
		if err != nil {
			return err
		}

		tickets, err = insertWalkIns(ctx, tx, st.ID, first, count, now)
		if err != nil {
			return err
		}

		if err := s.persist(ctx, tx, st, line, 0, now); err != nil {
			return err
		}
		st = standOf(st, line, now)
		return nil
	})
	if err != nil {
		return models.Stand{}, nil, err
	}
	return st, tickets, nil
}

// Serve manually serves up to count people at the head of the line
func (s *Store) Serve(ctx context.Context, standID string, count int) (models.Stand, int, error) {
	var st models.Stand
	served := 0
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		var line *Line
		var err error
		st, line, err = s.settled(ctx, tx, standID, now)
		if err != nil {
			return err
		}

		served, err = line.Serve(count, now)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, tx, st, line, served, now); err != nil {
			return err
		}
		st = standOf(st, line, now)
		return nil
	})
	if err != nil {
		return models.Stand{}, 0, err
	}

	slog.Info("stand served", "stand_id", standID, "served", served, "queue_counter", st.QueueCounter)
	return st, served, nil
}

// SetQueueLength forces a stand's line to exactly n people by adding walk-ins
// or serving from the head. n is clamped to the stand's capacity.
func (s *Store) SetQueueLength(ctx context.Context, standID string, n int) (models.Stand, error) {
	var st models.Stand
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		var line *Line
		var err error
		st, line, err = s.settled(ctx, tx, standID, now)
		if err != nil {
			return err
		}
		if n < 0 {
			n = 0
		}
		if n > line.Capacity {
			n = line.Capacity
		}

		switch {
		case n > line.Waiting:
			add := n - line.Waiting
			first, err := line.Admit(add, now)
			if err != nil {
				return err
			}
			if _, err := insertWalkIns(ctx, tx, st.ID, first, add, now); err != nil {
				return err
			}
			if err := s.persist(ctx, tx, st, line, 0, now); err != nil {
				return err
			}
		case n < line.Waiting:
			k, err := line.Serve(line.Waiting-n, now)
			if err != nil {
				return err
			}
			if err := s.persist(ctx, tx, st, line, k, now); err != nil {
				return err
			}
		}
		st = standOf(st, line, now)
		return nil
	})
	return st, err
}

// CancelReservation removes a waiting booking from its line.
// The token must match the one returned when booking.
func (s *Store) CancelReservation(ctx context.Context, id, token string) (models.Reservation, error) {
	var res models.Reservation
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		r, err := s.loadReservation(ctx, tx, "reservation_id", id)
		if err != nil {
			return err
		}
		if r.Token == nil || auth.ValidateReservationToken(token, *r.Token) != nil {
			return auth.ErrInvalidToken
		}

		// Decay first: the reservation may have been served in the meantime
		st, line, err := s.settled(ctx, tx, r.StandID, now)
		if err != nil {
			return err
		}
		r, err = s.loadReservation(ctx, tx, "reservation_id", id)
		if err != nil {
			return err
		}
		if r.Status != models.StatusWaiting {
			return ErrNotWaiting
		}

		var ahead int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM reservation
			WHERE stand_id = $1 AND status = $2 AND ticket < $3
		`, r.StandID, models.StatusWaiting, r.Ticket).Scan(&ahead)
		if err != nil {
			return fmt.Errorf("failed to count line position: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE reservation SET status = $1, closed_at = $2 WHERE reservation_id = $3
		`, models.StatusCancelled, now, id)
		if err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}

		line.Remove(ahead, now)
		if err := s.persist(ctx, tx, st, line, 0, now); err != nil {
			return err
		}

		r.Status = models.StatusCancelled
		r.ClosedAt = &now
		res = r
		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}

	slog.Info("reservation cancelled", "reservation_id", id, "stand_id", res.StandID)
	return res, nil
}

// GetReservation returns a reservation with its live position in line
func (s *Store) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	return s.getReservationBy(ctx, "reservation_id", id)
}

// GetReservationByCode looks a reservation up by its short code
func (s *Store) GetReservationByCode(ctx context.Context, code string) (models.Reservation, error) {
	return s.getReservationBy(ctx, "code", code)
}

func (s *Store) getReservationBy(ctx context.Context, column, value string) (models.Reservation, error) {
	var res models.Reservation
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		r, err := s.loadReservation(ctx, tx, column, value)
		if err != nil {
			return err
		}
		_, line, err := s.settled(ctx, tx, r.StandID, now)
		if err != nil {
			return err
		}
		res, err = s.loadReservation(ctx, tx, column, value)
		if err != nil {
			return err
		}
		if res.Status != models.StatusWaiting {
			return nil
		}

		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM reservation
			WHERE stand_id = $1 AND status = $2 AND ticket < $3
		`, res.StandID, models.StatusWaiting, res.Ticket).Scan(&res.Ahead)
		if err != nil {
			return fmt.Errorf("failed to count line position: %w", err)
		}
		res.WaitSeconds = line.TicketWait(res.Ahead, now).Seconds()
		return nil
	})
	return res, err
}

// ListReservations returns a stand's bookings in ticket order.
// Walk-ins are included only when withWalkIns is set.
func (s *Store) ListReservations(ctx context.Context, standID string, withWalkIns bool) ([]models.Reservation, error) {
	out := []models.Reservation{}
	err := s.inTx(ctx, func(tx *sql.Tx, now time.Time) error {
		_, line, err := s.settled(ctx, tx, standID, now)
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT `+reservationColumns+`
			FROM reservation
			WHERE stand_id = $1
			ORDER BY ticket
		`, standID)
		if err != nil {
			return fmt.Errorf("failed to query reservations: %w", err)
		}
		defer rows.Close()

		ahead := 0
		for rows.Next() {
			r, err := scanReservation(rows)
			if err != nil {
				return fmt.Errorf("failed to scan reservation: %w", err)
			}
			if r.Status == models.StatusWaiting {
				r.Ahead = ahead
				r.WaitSeconds = line.TicketWait(ahead, now).Seconds()
				ahead++
			}
			if r.Source == models.SourceWalkIn && !withWalkIns {
				continue
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Internal helpers

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx, now time.Time) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx, s.clock()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertWalkIns(ctx context.Context, tx *sql.Tx, standID string, first, count int, now time.Time) ([]int, error) {
	tickets := make([]int, 0, count)
	for t := first; t < first+count; t++ {
		id, err := auth.GenerateID(16)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reservation (reservation_id, stand_id, ticket, reservation_datetime,
				reservation_name, source, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, id, standID, t, now, "walk-in", models.SourceWalkIn, models.StatusWaiting)
		if err != nil {
			return nil, fmt.Errorf("failed to insert walk-in: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (s *Store) standIDs(ctx context.Context, tx *sql.Tx, kind string) ([]string, error) {
	query := "SELECT id FROM stand ORDER BY name"
	args := []any{}
	if kind != "" {
		query = "SELECT id FROM stand WHERE kind = $1 ORDER BY name"
		args = append(args, kind)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stands: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stand id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// settled loads a stand, applies decay and writes it back
func (s *Store) settled(ctx context.Context, tx *sql.Tx, id string, now time.Time) (models.Stand, *Line, error) {
	st, err := s.loadStand(ctx, tx, id)
	if err != nil {
		return models.Stand{}, nil, err
	}
	line := LineOf(st)
	k := line.Decay(now)
	if err := s.persist(ctx, tx, st, line, k, now); err != nil {
		return models.Stand{}, nil, err
	}
	return standOf(st, line, now), line, nil
}

func (s *Store) loadStand(ctx context.Context, tx *sql.Tx, id string) (models.Stand, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+standColumns+` FROM stand WHERE id = $1`+s.lock, id)
	var st models.Stand
	err := row.Scan(&st.ID, &st.Name, &st.Kind, &st.MaxCapacity, &st.QueueCounter,
		&st.Arrivals, &st.Served, &st.ServiceSeconds, &st.Servers, &st.Lat, &st.Lon,
		&st.LastServedAt, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stand{}, ErrStandNotFound
	}
	if err != nil {
		return models.Stand{}, fmt.Errorf("failed to query stand: %w", err)
	}
	return st, nil
}

// persist writes the line counters back and marks the k oldest waiting
// tickets as served in the same transaction.
func (s *Store) persist(ctx context.Context, tx *sql.Tx, st models.Stand, line *Line, served int, now time.Time) error {
	if served > 0 {
		result, err := tx.ExecContext(ctx, `
			UPDATE reservation SET status = $1, closed_at = $2
			WHERE reservation_id IN (
				SELECT reservation_id FROM reservation
				WHERE stand_id = $3 AND status = $4
				ORDER BY ticket
				LIMIT $5
			)
		`, models.StatusServed, now, st.ID, models.StatusWaiting, served)
		if err != nil {
			return fmt.Errorf("failed to mark served tickets: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read served count: %w", err)
		}
		if int(n) != served {
			slog.Error("served tickets mismatch", "stand_id", st.ID, "expected", served, "marked", n)
			return ErrInconsistent
		}
	}

	if line.Waiting == st.QueueCounter && line.Arrivals == st.Arrivals &&
		line.Served == st.Served && line.LastServedAt.Equal(st.LastServedAt) {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE stand
		SET queue_counter = $1, arrivals = $2, served = $3, last_served_at = $4
		WHERE id = $5
	`, line.Waiting, line.Arrivals, line.Served, line.LastServedAt.UTC(), st.ID)
	if err != nil {
		return fmt.Errorf("failed to update stand: %w", err)
	}
	return nil
}

func (s *Store) loadReservation(ctx context.Context, tx *sql.Tx, column, value string) (models.Reservation, error) {
	// column is one of two constants chosen by this package
	row := tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservation WHERE `+column+` = $1`, value)
	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return models.Reservation{}, fmt.Errorf("failed to query reservation: %w", err)
	}
	return r, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.StandID, &r.Ticket, &r.Datetime, &r.Name, &r.Source,
		&r.Status, &r.Code, &r.Token, &r.IPHash, &r.ClosedAt)
	return r, err
}

// LineOf rebuilds the line model of a stand row
func LineOf(st models.Stand) *Line {
	return &Line{
		Capacity:       st.MaxCapacity,
		Waiting:        st.QueueCounter,
		Arrivals:       st.Arrivals,
		Served:         st.Served,
		ServiceSeconds: st.ServiceSeconds,
		Servers:        st.Servers,
		LastServedAt:   st.LastServedAt.UTC(),
	}
}

func standOf(st models.Stand, line *Line, now time.Time) models.Stand {
	st.QueueCounter = line.Waiting
	st.Arrivals = line.Arrivals
	st.Served = line.Served
	st.LastServedAt = line.LastServedAt
	st.WaitSeconds = line.Wait(now).Seconds()
	st.QRPayload = StandQRPayload(st.ID)
	return st
}
