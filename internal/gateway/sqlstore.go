package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

const dateLayout = "2006-01-02"

// ErrUnknownCode is returned when saving points for a country or indicator
// that is not in the store
var ErrUnknownCode = errors.New("unknown code")

// dialect holds the statements that differ between drivers
type dialect struct {
	driverName      string
	autoID          string
	upsertPoint     string
	insertIgnoreFmt string
	numbered        bool
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName: "sqlite",
		autoID:     "INTEGER PRIMARY KEY AUTOINCREMENT",
		upsertPoint: `INSERT INTO data_points (country_id, indicator_id, obs_date, value, source_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (country_id, indicator_id, obs_date) DO UPDATE SET value = excluded.value, source_id = excluded.source_id`,
		insertIgnoreFmt: "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
	},
	"postgres": {
		driverName: "postgres",
		autoID:     "SERIAL PRIMARY KEY",
		upsertPoint: `INSERT INTO data_points (country_id, indicator_id, obs_date, value, source_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (country_id, indicator_id, obs_date) DO UPDATE SET value = EXCLUDED.value, source_id = EXCLUDED.source_id`,
		insertIgnoreFmt: "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		numbered:        true,
	},
	"mysql": {
		driverName: "mysql",
		autoID:     "INT AUTO_INCREMENT PRIMARY KEY",
		upsertPoint: `INSERT INTO data_points (country_id, indicator_id, obs_date, value, source_id)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), source_id = VALUES(source_id)`,
		insertIgnoreFmt: "INSERT IGNORE INTO %s (%s) VALUES (%s)",
	},
}

// SQLStore keeps collected observations in countries / indicators /
// data_sources / data_points tables. It is safe for concurrent use.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	catalog *catalog.Catalog
}

// OpenSQLStore opens the database for driver ("sqlite", "postgres" or "mysql"),
// creates missing tables and seeds countries and indicators from the catalog.
func OpenSQLStore(ctx context.Context, driver, dsn string, cat *catalog.Catalog) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	connStr := dsn
	if driver == "sqlite" && dsn == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open(d.driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite" {
		// Single writer avoids SQLITE_BUSY and keeps an in-memory database shared
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLStore{db: db, dialect: d, catalog: cat}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	if cat != nil {
		if err := s.SeedCatalog(ctx, cat); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			id ` + s.dialect.autoID + `,
			code VARCHAR(8) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			region VARCHAR(255)
		)`,
		`CREATE TABLE IF NOT EXISTS indicators (
			id ` + s.dialect.autoID + `,
			code VARCHAR(64) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(64),
			unit VARCHAR(64),
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS data_sources (
			id ` + s.dialect.autoID + `,
			name VARCHAR(128) NOT NULL UNIQUE,
			url VARCHAR(255),
			reliability_score DOUBLE PRECISION,
			last_updated VARCHAR(10)
		)`,
		`CREATE TABLE IF NOT EXISTS data_points (
			id ` + s.dialect.autoID + `,
			country_id INTEGER NOT NULL,
			indicator_id INTEGER NOT NULL,
			obs_date VARCHAR(10) NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			source_id INTEGER,
			UNIQUE (country_id, indicator_id, obs_date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}
	return nil
}

// SeedCatalog inserts catalog countries and indicators that are not stored yet
func (s *SQLStore) SeedCatalog(ctx context.Context, cat *catalog.Catalog) error {
	for _, c := range cat.Countries() {
		if err := s.insertIgnore(ctx, "countries", []string{"code", "name", "region"},
			string(c.Code), c.Name, c.Region); err != nil {
			return fmt.Errorf("insert country %s: %w", c.Code, err)
		}
	}
	for _, ind := range cat.Indicators() {
		if err := s.insertIgnore(ctx, "indicators", []string{"code", "name", "category", "unit", "description"},
			string(ind.Code), ind.Name, ind.Category, ind.Unit, ind.NameEN); err != nil {
			return fmt.Errorf("insert indicator %s: %w", ind.Code, err)
		}
	}
	return nil
}

// EnsureSource returns the id of a data source, creating it on first use.
// last_updated is refreshed on every call.
func (s *SQLStore) EnsureSource(ctx context.Context, name, url string, reliability float64, now time.Time) (int64, error) {
	if err := s.insertIgnore(ctx, "data_sources", []string{"name", "url", "reliability_score", "last_updated"},
		name, url, reliability, now.Format(dateLayout)); err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.rebind("UPDATE data_sources SET last_updated = ? WHERE name = ?"),
		now.Format(dateLayout), name); err != nil {
		return 0, fmt.Errorf("update source: %w", err)
	}

	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id FROM data_sources WHERE name = ?"), name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select source: %w", err)
	}
	return id, nil
}

// SavePoints upserts the points of one series in a single transaction and
// returns the number written
func (s *SQLStore) SavePoints(ctx context.Context, sourceID int64, country model.CountryCode, indicator model.IndicatorCode, points []model.Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	countryID, err := s.lookupID(ctx, "countries", string(country))
	if err != nil {
		return 0, err
	}
	indicatorID, err := s.lookupID(ctx, "indicators", string(indicator))
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(s.dialect.upsertPoint))
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, countryID, indicatorID, p.Date.Format(dateLayout), p.Value, sourceID); err != nil {
			return 0, fmt.Errorf("upsert point %s: %w", p.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(points), nil
}

// Fetch implements Gateway over the stored observations
func (s *SQLStore) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	query := `SELECT dp.obs_date, dp.value, COALESCE(ds.name, '')
		FROM data_points dp
		JOIN countries c ON c.id = dp.country_id
		JOIN indicators i ON i.id = dp.indicator_id
		LEFT JOIN data_sources ds ON ds.id = dp.source_id
		WHERE c.code = ? AND i.code = ?`
	args := []any{string(country), string(indicator)}

	if start != nil {
		query += " AND dp.obs_date >= ?"
		args = append(args, start.Format(dateLayout))
	}
	if end != nil {
		query += " AND dp.obs_date <= ?"
		args = append(args, end.Format(dateLayout))
	}
	query += " ORDER BY dp.obs_date"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		points []model.Point
		source string
	)
	for rows.Next() {
		var (
			date  string
			value float64
			src   string
		)
		if err := rows.Scan(&date, &value, &src); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		points = append(points, model.Point{Date: d, Value: value})
		if source == "" {
			source = src
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}

	return newSeries(s.catalog, country, indicator, source, points), nil
}

// Count returns the number of stored data points
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data_points").Scan(&n); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return n, nil
}

func (s *SQLStore) lookupID(ctx context.Context, table, code string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id FROM "+table+" WHERE code = ?"), code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %s", ErrUnknownCode, strings.TrimSuffix(table, "s"), code)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", table, err)
	}
	return id, nil
}

func (s *SQLStore) insertIgnore(ctx context.Context, table string, columns []string, args ...any) error {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf(s.dialect.insertIgnoreFmt, table, strings.Join(columns, ", "), marks)
	_, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	return err
}

// rebind rewrites ? placeholders as $1, $2... for postgres
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
