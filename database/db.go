package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/ministryofjustice/delius-api/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database connection error: %v", err)
		return nil, errors.Wrap(err, "database ping failed")
	}
	err = createSchema(db)
	if err != nil {
		return nil, err
	}
	err = createOffenderTable(db)
	if err != nil {
		return nil, err
	}
	err = createOffenderDeltaTable(db)
	if err != nil {
		return nil, err
	}
	err = createNsiTables(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS delius`)
	return err
}

func createOffenderTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS delius.offenders (
			offender_id BIGSERIAL PRIMARY KEY,
			crn TEXT NOT NULL UNIQUE,
			first_name TEXT,
			surname TEXT,
			date_of_birth DATE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// createOffenderDeltaTable creates the queue of offender-changed records.
// last_updated_datetime doubles as the lease heartbeat.
func createOffenderDeltaTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS delius.offender_delta (
			offender_delta_id BIGSERIAL PRIMARY KEY,
			offender_id BIGINT NOT NULL,
			date_changed TIMESTAMP NOT NULL,
			action TEXT NOT NULL,
			source_table TEXT,
			source_record_id BIGINT,
			status TEXT NOT NULL DEFAULT 'CREATED',
			created_datetime TIMESTAMP NOT NULL DEFAULT NOW(),
			last_updated_datetime TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_offender_delta_status ON delius.offender_delta (status, last_updated_datetime, created_datetime);
		CREATE INDEX IF NOT EXISTS idx_offender_delta_offender ON delius.offender_delta (offender_id)
	`)
	return err
}

func createNsiTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS delius.nsis (
			nsi_id BIGSERIAL PRIMARY KEY,
			offender_id BIGINT NOT NULL REFERENCES delius.offenders(offender_id),
			event_id BIGINT NOT NULL,
			type_code TEXT NOT NULL,
			sub_type_code TEXT,
			referral_date DATE NOT NULL,
			status_code TEXT NOT NULL,
			requirement_id BIGINT,
			intended_provider_code TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS delius.nsi_managers (
			nsi_manager_id BIGSERIAL PRIMARY KEY,
			nsi_id BIGINT NOT NULL REFERENCES delius.nsis(nsi_id),
			staff_code TEXT,
			team_code TEXT,
			provider_code TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_nsis_scope ON delius.nsis (offender_id, event_id, type_code)
	`)
	return err
}
