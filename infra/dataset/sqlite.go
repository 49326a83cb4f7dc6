package dataset

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/ctr/core/model"
)

const surveySchema = `CREATE TABLE IF NOT EXISTS survey_records (
        cycle TEXT NOT NULL,
        location TEXT NOT NULL,
        organization TEXT NOT NULL,
        total_employees INTEGER,
        surveys_returned INTEGER,
        drive_alone_rate REAL,
        drive_alone_trips INTEGER,
        bus_trips INTEGER,
        train_trips INTEGER,
        carpool_trips INTEGER,
        vanpool_trips INTEGER,
        walk_trips INTEGER,
        bike_trips INTEGER,
        telework_days INTEGER,
        total_weekly_trips INTEGER,
        vmt_per_employee REAL,
        response_rate REAL,
        PRIMARY KEY (cycle, organization)
    );`

const surveyColumns = `cycle, location, organization, total_employees, surveys_returned,
        drive_alone_rate, drive_alone_trips, bus_trips, train_trips, carpool_trips,
        vanpool_trips, walk_trips, bike_trips, telework_days, total_weekly_trips,
        vmt_per_employee, response_rate`

// SQLiteSource loads survey records from a SQLite database.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// NewSQLiteSource opens or creates the database at path and ensures schema.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(surveySchema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteSource{db: db, path: path}, nil
}

func (s *SQLiteSource) Name() string { return "sqlite:" + s.path }

// Import stores records, replacing rows with the same cycle and
// organization. It runs in a single transaction and returns the row count.
func (s *SQLiteSource) Import(ctx context.Context, records []model.SurveyRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO survey_records (`+surveyColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()
	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			string(r.Cycle), r.Geography.String(), r.OrganizationID,
			r.TotalEmployees, r.SurveysReturned, nullable(r.DriveAloneRate),
			r.DriveAloneTrips, r.BusTrips, r.TrainTrips, r.CarpoolTrips,
			r.VanpoolTrips, r.WalkTrips, r.BikeTrips, r.TeleworkDays,
			r.TotalWeeklyTrips, nullable(r.VMTPerEmployee), nullable(r.ResponseRate))
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Load reads every stored record and validates them into a table.
func (s *SQLiteSource) Load(ctx context.Context) (*model.Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+surveyColumns+` FROM survey_records ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var records []model.SurveyRecord
	for row := 1; rows.Next(); row++ {
		var (
			r                  model.SurveyRecord
			cycle, location    string
			dar, vmt, respRate sql.NullFloat64
		)
		if err := rows.Scan(&cycle, &location, &r.OrganizationID,
			&r.TotalEmployees, &r.SurveysReturned, &dar,
			&r.DriveAloneTrips, &r.BusTrips, &r.TrainTrips, &r.CarpoolTrips,
			&r.VanpoolTrips, &r.WalkTrips, &r.BikeTrips, &r.TeleworkDays,
			&r.TotalWeeklyTrips, &vmt, &respRate); err != nil {
			return nil, &model.SchemaViolation{Row: row, Column: "survey_records", Msg: err.Error()}
		}
		g, err := model.ParseGeography(location)
		if err != nil {
			return nil, &model.SchemaViolation{Column: ColLocation, Row: row, Msg: err.Error()}
		}
		r.Cycle = model.Cycle(cycle)
		r.Geography = g
		r.DriveAloneRate = fromNull(dar)
		r.VMTPerEmployee = fromNull(vmt)
		r.ResponseRate = fromNull(respRate)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.NewTable(records)
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error { return s.db.Close() }

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func fromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Float(n.Float64)
}
