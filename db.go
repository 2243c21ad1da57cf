package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"berlinstats/internal/analytics"
)

type DB struct {
	conn    *sql.DB
	dataDir string
}

var _ analytics.Source = (*DB)(nil)

func NewDB(dataDir string) (*DB, error) {
	dbPath := filepath.Join(dataDir, "data.duckdb")

	// Check if database needs to be initialized
	needsInit := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		needsInit = true
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open DuckDB database", "error", err, "db_path", dbPath)
		}
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	d := &DB{
		conn:    db,
		dataDir: dataDir,
	}

	if needsInit {
		fmt.Println("📊 Initializing database from CSV files...")
		if err := d.initializeDatabase(); err != nil {
			db.Close()
			os.Remove(dbPath)
			if logger != nil {
				logger.Error("Database initialization failed", "error", err, "data_dir", dataDir)
			}
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		fmt.Println("✅ Database initialized successfully!")
		if logger != nil {
			logger.Info("Database initialized successfully", "db_path", dbPath)
		}
	} else {
		// databases created before the brief cache existed
		if err := d.createCacheTables(); err != nil {
			if logger != nil {
				logger.Warn("Failed to create cache tables on existing database", "error", err)
			}
		}
	}

	return d, nil
}

// initializeDatabase creates tables and loads data from CSV files
func (d *DB) initializeDatabase() error {
	districtsFile := filepath.Join(d.dataDir, "districts.csv")
	snapshotsFile := filepath.Join(d.dataDir, "city_snapshots.csv")
	communitiesFile := filepath.Join(d.dataDir, "communities.csv")
	progressionFile := filepath.Join(d.dataDir, "community_progression.csv")

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Ignore error - will fail if transaction was committed
	}()

	fmt.Println("   Loading districts...")
	start := time.Now()
	_, err = tx.Exec(fmt.Sprintf(`
		CREATE TABLE districts AS
		SELECT * FROM read_csv('%s', header=true, columns={
			'id': 'INTEGER',
			'city': 'VARCHAR',
			'name': 'VARCHAR',
			'name_en': 'VARCHAR',
			'population': 'INTEGER',
			'area': 'DOUBLE',
			'foreigner_percentage': 'DOUBLE',
			'dominant_community': 'VARCHAR',
			'mosques': 'INTEGER',
			'churches': 'INTEGER',
			'synagogues': 'INTEGER'
		})
	`, districtsFile))
	if err != nil {
		return fmt.Errorf("failed to create districts table: %w", err)
	}
	_, err = tx.Exec(`CREATE INDEX idx_districts_city ON districts(city)`)
	if err != nil {
		return fmt.Errorf("failed to create index on districts city: %w", err)
	}
	fmt.Printf("   ✓ Districts loaded (%v)\n", time.Since(start))

	fmt.Println("   Loading city snapshots...")
	start = time.Now()
	_, err = tx.Exec(fmt.Sprintf(`
		CREATE TABLE city_snapshots AS
		SELECT * FROM read_csv('%s', header=true, columns={
			'city': 'VARCHAR',
			'year': 'INTEGER',
			'mosques_count': 'INTEGER',
			'churches_count': 'INTEGER',
			'synagogues_count': 'INTEGER',
			'total_population': 'INTEGER'
		})
	`, snapshotsFile))
	if err != nil {
		return fmt.Errorf("failed to create city_snapshots table: %w", err)
	}
	fmt.Printf("   ✓ Snapshots loaded (%v)\n", time.Since(start))

	fmt.Println("   Loading communities...")
	start = time.Now()
	_, err = tx.Exec(fmt.Sprintf(`
		CREATE TABLE communities AS
		SELECT * FROM read_csv('%s', header=true, columns={
			'city': 'VARCHAR',
			'community': 'VARCHAR',
			'latest_percentage': 'DOUBLE',
			'rank': 'INTEGER'
		})
	`, communitiesFile))
	if err != nil {
		return fmt.Errorf("failed to create communities table: %w", err)
	}

	_, err = tx.Exec(fmt.Sprintf(`
		CREATE TABLE community_progression AS
		SELECT * FROM read_csv('%s', header=true, columns={
			'city': 'VARCHAR',
			'community': 'VARCHAR',
			'year': 'INTEGER',
			'population': 'INTEGER'
		})
	`, progressionFile))
	if err != nil {
		return fmt.Errorf("failed to create community_progression table: %w", err)
	}
	_, err = tx.Exec(`CREATE INDEX idx_progression_city ON community_progression(city)`)
	if err != nil {
		return fmt.Errorf("failed to create index on progression city: %w", err)
	}
	fmt.Printf("   ✓ Communities loaded (%v)\n", time.Since(start))

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	fmt.Println("   Creating cache tables...")
	start = time.Now()
	if err := d.createCacheTables(); err != nil {
		return fmt.Errorf("failed to create cache tables: %w", err)
	}
	fmt.Printf("   ✓ Cache tables created (%v)\n", time.Since(start))

	return nil
}

// createCacheTables creates the table holding generated district briefs
func (d *DB) createCacheTables() error {
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS brief_cache (
			district_id INTEGER PRIMARY KEY,
			district_name VARCHAR,
			model VARCHAR,
			markdown_content TEXT,
			generated_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to create brief_cache table", "error", err)
		}
		return fmt.Errorf("failed to create brief_cache table: %w", err)
	}

	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// ListCities returns every city with districts, Berlin first.
func (d *DB) ListCities(ctx context.Context) ([]string, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT DISTINCT city FROM districts
		ORDER BY CASE WHEN city = $1 THEN 0 ELSE 1 END, city
	`, analytics.DefaultCity)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

const districtColumns = `id, city, name, name_en, population, area, foreigner_percentage,
	dominant_community, mosques, churches, synagogues`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDistrict(row rowScanner) (analytics.DistrictRecord, error) {
	var (
		d                             analytics.DistrictRecord
		nameEn, dominant              sql.NullString
		mosques, churches, synagogues sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.City, &d.Name, &nameEn, &d.Population, &d.Area,
		&d.ForeignerPercentage, &dominant, &mosques, &churches, &synagogues)
	if err != nil {
		return analytics.DistrictRecord{}, err
	}
	d.NameEn = nameEn.String
	d.DominantCommunity = dominant.String
	d.Mosques = nullableCount(mosques)
	d.Churches = nullableCount(churches)
	d.Synagogues = nullableCount(synagogues)
	return d, nil
}

func nullableCount(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return analytics.IntPtr(int(n.Int64))
}

// ListDistricts returns the districts of a city ordered by id.
func (d *DB) ListDistricts(ctx context.Context, city string) ([]analytics.DistrictRecord, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT `+districtColumns+` FROM districts WHERE city = $1 ORDER BY id`, city)
	if err != nil {
		if logger != nil {
			logger.Error("District query failed", "error", err, "city", city)
		}
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer rows.Close()

	districts := []analytics.DistrictRecord{}
	for rows.Next() {
		rec, err := scanDistrict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan district: %w", err)
		}
		districts = append(districts, rec)
	}
	return districts, rows.Err()
}

func (d *DB) GetDistrictByID(ctx context.Context, id int) (analytics.DistrictRecord, error) {
	row := d.conn.QueryRowContext(ctx,
		`SELECT `+districtColumns+` FROM districts WHERE id = $1`, id)
	rec, err := scanDistrict(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return analytics.DistrictRecord{}, fmt.Errorf("district %d: %w", id, analytics.ErrNotFound)
		}
		return analytics.DistrictRecord{}, fmt.Errorf("failed to get district: %w", err)
	}
	return rec, nil
}

// GetCitySummary pairs the snapshot of year with the latest earlier one.
// Missing snapshots are left nil.
func (d *DB) GetCitySummary(ctx context.Context, city string, year int) (analytics.CitySummary, error) {
	var summary analytics.CitySummary

	current, err := d.snapshot(ctx, `
		SELECT city, year, mosques_count, churches_count, synagogues_count, total_population
		FROM city_snapshots WHERE city = $1 AND year = $2
	`, city, year)
	if err != nil {
		return summary, err
	}
	summary.Current = current

	previous, err := d.snapshot(ctx, `
		SELECT city, year, mosques_count, churches_count, synagogues_count, total_population
		FROM city_snapshots WHERE city = $1 AND year < $2
		ORDER BY year DESC LIMIT 1
	`, city, year)
	if err != nil {
		return summary, err
	}
	summary.Previous = previous

	return summary, nil
}

func (d *DB) snapshot(ctx context.Context, query string, args ...any) (*analytics.CitySnapshot, error) {
	var s analytics.CitySnapshot
	err := d.conn.QueryRowContext(ctx, query, args...).Scan(
		&s.City, &s.Year, &s.MosquesCount, &s.ChurchesCount, &s.SynagoguesCount, &s.TotalPopulation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city snapshot: %w", err)
	}
	return &s, nil
}

// Years returns the snapshot years known for a city, newest first.
func (d *DB) Years(ctx context.Context, city string) ([]int, error) {
	rows, err := d.conn.QueryContext(ctx,
		`SELECT year FROM city_snapshots WHERE city = $1 ORDER BY year DESC`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// GetCommunityComposition returns the communities of a city by rank, each
// with its progression in ascending year order.
func (d *DB) GetCommunityComposition(ctx context.Context, city string) ([]analytics.Community, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT community, latest_percentage
		FROM communities WHERE city = $1
		ORDER BY rank, community
	`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query communities: %w", err)
	}

	communities := []analytics.Community{}
	index := map[string]int{}
	for rows.Next() {
		c := analytics.Community{Progression: []analytics.CommunityProgressionPoint{}}
		if err := rows.Scan(&c.Name, &c.LatestPercentage); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		index[c.Name] = len(communities)
		communities = append(communities, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prog, err := d.conn.QueryContext(ctx, `
		SELECT community, year, population
		FROM community_progression WHERE city = $1
		ORDER BY community, year
	`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query community progression: %w", err)
	}
	defer prog.Close()

	for prog.Next() {
		var (
			name string
			p    analytics.CommunityProgressionPoint
		)
		if err := prog.Scan(&name, &p.Year, &p.Population); err != nil {
			return nil, fmt.Errorf("failed to scan progression: %w", err)
		}
		i, ok := index[name]
		if !ok {
			continue
		}
		communities[i].Progression = append(communities[i].Progression, p)
	}
	return communities, prog.Err()
}

// ExecuteQuery runs arbitrary SQL and returns the rows as column maps.
func (d *DB) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		if logger != nil {
			logger.Error("Query failed", "error", err, "query", query)
		}
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// SaveBrief stores a generated district brief
func (d *DB) SaveBrief(districtID int, districtName, model, markdownContent string, generatedAt time.Time) error {
	query := `
		INSERT INTO brief_cache (district_id, district_name, model, markdown_content, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (district_id) DO UPDATE SET
			district_name = EXCLUDED.district_name,
			model = EXCLUDED.model,
			markdown_content = EXCLUDED.markdown_content,
			generated_at = EXCLUDED.generated_at,
			created_at = CURRENT_TIMESTAMP
	`

	_, err := d.conn.Exec(query, districtID, districtName, model, markdownContent, generatedAt)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to save brief", "error", err, "district_id", districtID)
		}
		return fmt.Errorf("failed to save brief: %w", err)
	}

	if logger != nil {
		logger.Info("Saved district brief to database cache", "district_id", districtID, "district", districtName)
	}

	return nil
}

// LoadBrief returns a cached brief no older than maxAge
func (d *DB) LoadBrief(districtID int, maxAge time.Duration) (markdownContent string, generatedAt time.Time, err error) {
	query := `
		SELECT markdown_content, generated_at
		FROM brief_cache
		WHERE district_id = $1
	`

	err = d.conn.QueryRow(query, districtID).Scan(&markdownContent, &generatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", time.Time{}, fmt.Errorf("no cache entry found")
		}
		if logger != nil {
			logger.Error("Failed to load brief", "error", err, "district_id", districtID)
		}
		return "", time.Time{}, fmt.Errorf("failed to load brief: %w", err)
	}

	if time.Since(generatedAt) > maxAge {
		return "", time.Time{}, fmt.Errorf("cache expired")
	}

	return markdownContent, generatedAt, nil
}
