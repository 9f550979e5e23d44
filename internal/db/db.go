// Package db keeps a history of scan cycle outcomes in SQLite. It records
// what each cycle concluded, never the anchor identifiers it saw.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"

	"github.com/banshee-data/roomscan/internal/httputil"
)

// DefaultRecentLimit bounds RecentCycles when no limit is given.
const DefaultRecentLimit = 50

type DB struct {
	*sql.DB
	path string
}

// NewDB opens the database at path and applies the embedded migrations.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec(`PRAGMA busy_timeout = 5000; PRAGMA journal_mode = WAL;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.MigrateUp(MigrationsFS()); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Cycle is the recorded outcome of one scan cycle.
type Cycle struct {
	ID         string    `json:"cycle_id"`
	Session    uint64    `json:"session"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Attempts   int       `json:"attempts"`
	State      string    `json:"state"`
	Supported  bool      `json:"supported"`
	// ErrorCode is the native status of the failing call, if there was one.
	ErrorCode      *int32 `json:"error_code,omitempty"`
	Error          string `json:"error,omitempty"`
	Records        int    `json:"records"`
	FloorPresent   bool   `json:"floor_present"`
	CeilingPresent bool   `json:"ceiling_present"`
	WallCount      int    `json:"wall_count"`
}

// Duration is how long the cycle took, including pending retries.
func (c *Cycle) Duration() time.Duration {
	return c.FinishedAt.Sub(c.StartedAt)
}

func (c *Cycle) String() string {
	return fmt.Sprintf("Cycle<%s, %s, records=%d, walls=%d>", c.ID, c.State, c.Records, c.WallCount)
}

// RecordCycle stores c. Recording the same cycle id twice is an error.
func (db *DB) RecordCycle(c Cycle) error {
	if c.ID == "" {
		return errors.New("cycle id is required")
	}
	var code sql.NullInt64
	if c.ErrorCode != nil {
		code = sql.NullInt64{Int64: int64(*c.ErrorCode), Valid: true}
	}
	var errText sql.NullString
	if c.Error != "" {
		errText = sql.NullString{String: c.Error, Valid: true}
	}

	_, err := db.Exec(
		`INSERT INTO scan_cycles (
			cycle_id, session, started_unix_nanos, finished_unix_nanos, attempts,
			state, supported, error_code, error, records,
			floor_present, ceiling_present, wall_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, int64(c.Session), unixNanos(c.StartedAt), unixNanos(c.FinishedAt), c.Attempts,
		c.State, c.Supported, code, errText, c.Records,
		c.FloorPresent, c.CeilingPresent, c.WallCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record cycle %s: %w", c.ID, err)
	}
	return nil
}

// RecentCycles returns up to limit cycles, newest first. A limit of zero or
// less uses DefaultRecentLimit.
func (db *DB) RecentCycles(limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := db.Query(
		`SELECT cycle_id, session, started_unix_nanos, finished_unix_nanos, attempts,
			state, supported, error_code, error, records,
			floor_present, ceiling_present, wall_count
		FROM scan_cycles
		ORDER BY started_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cycles := []Cycle{}
	for rows.Next() {
		var (
			c                 Cycle
			session           int64
			started, finished int64
			code              sql.NullInt64
			errText           sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &session, &started, &finished, &c.Attempts,
			&c.State, &c.Supported, &code, &errText, &c.Records,
			&c.FloorPresent, &c.CeilingPresent, &c.WallCount,
		); err != nil {
			return nil, err
		}
		c.Session = uint64(session)
		c.StartedAt = fromUnixNanos(started)
		c.FinishedAt = fromUnixNanos(finished)
		if code.Valid {
			v := int32(code.Int64)
			c.ErrorCode = &v
		}
		c.Error = errText.String
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cycles, nil
}

// unixNanos stores the zero time as 0 since it is outside the int64 range.
func unixNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// CountCyclesByState returns how many recorded cycles ended in each state.
func (db *DB) CountCyclesByState() (map[string]int, error) {
	rows, err := db.Query(`SELECT state, COUNT(*) FROM scan_cycles GROUP BY state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

// AttachAdminRoutes mounts live SQL debugging and a cycle history page
// under /debug/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Scan cycle DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.HandleFunc("cycles", "Recent scan cycles as JSON", db.handleCycles)
	return nil
}

func (db *DB) handleCycles(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	cycles, err := db.RecentCycles(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("Failed to load cycles: %v", err))
		return
	}
	httputil.WriteJSONOK(w, cycles)
}
