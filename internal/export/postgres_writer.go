package export

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// PostgresWriter persists reports to PostgreSQL, one row set per city and year.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection, waits for the server and creates the
// report tables.
func NewPostgresWriter(dsn string, attempts int) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS city_reports (
			city             TEXT        NOT NULL,
			year             INTEGER     NOT NULL,
			total_population INTEGER     NOT NULL DEFAULT 0,
			generated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (city, year)
		);

		CREATE TABLE IF NOT EXISTS report_communities (
			city       TEXT          NOT NULL,
			year       INTEGER       NOT NULL,
			community  TEXT          NOT NULL,
			percentage NUMERIC(6,2)  NOT NULL DEFAULT 0,
			trend      NUMERIC(10,2) NOT NULL DEFAULT 0,
			data_year  INTEGER       NOT NULL,
			PRIMARY KEY (city, year, community)
		);

		CREATE TABLE IF NOT EXISTS report_infrastructure (
			city   TEXT          NOT NULL,
			year   INTEGER       NOT NULL,
			type   TEXT          NOT NULL,
			count  INTEGER       NOT NULL DEFAULT 0,
			change NUMERIC(10,2) NOT NULL DEFAULT 0,
			PRIMARY KEY (city, year, type)
		);
	`)
	return err
}

// Write replaces the stored report of r.City and r.Year.
func (pw *PostgresWriter) Write(r Report) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		INSERT INTO city_reports (city, year, total_population, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (city, year) DO UPDATE SET
			total_population = EXCLUDED.total_population,
			generated_at = EXCLUDED.generated_at
	`, r.City, r.Year, r.Population, r.GeneratedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert report: %w", err)
	}

	for _, table := range []string{"report_communities", "report_infrastructure"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE city = $1 AND year = $2", r.City, r.Year); err != nil {
			return fmt.Errorf("postgres: clear %s: %w", table, err)
		}
	}

	if len(r.Communities) > 0 {
		query, args := communityInsert(r)
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert communities: %w", err)
		}
	}
	if len(r.Infrastructure) > 0 {
		query, args := infrastructureInsert(r)
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert infrastructure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func communityInsert(r Report) (string, []interface{}) {
	valueStrings := make([]string, 0, len(r.Communities))
	valueArgs := make([]interface{}, 0, len(r.Communities)*6)

	for idx, c := range r.Communities {
		base := idx * 6
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs, r.City, r.Year, c.Name, c.Percentage, c.Trend, c.Year)
	}

	query := fmt.Sprintf(`
		INSERT INTO report_communities (city, year, community, percentage, trend, data_year)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func infrastructureInsert(r Report) (string, []interface{}) {
	valueStrings := make([]string, 0, len(r.Infrastructure))
	valueArgs := make([]interface{}, 0, len(r.Infrastructure)*5)

	for idx, i := range r.Infrastructure {
		base := idx * 5
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, r.City, r.Year, i.Type, i.Count, i.YearOverYearChange)
	}

	query := fmt.Sprintf(`
		INSERT INTO report_infrastructure (city, year, type, count, change)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
