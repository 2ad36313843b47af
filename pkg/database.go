package eeglab

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// ConnectToDatabase opens the electrode catalog. For the sqlite driver host
// is the database file and the credentials are ignored.
func ConnectToDatabase(driver string, user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	switch driver {
	case "", "mysql":
		port := "3306"
		dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
		return sqlx.Connect("mysql", dbURI)
	case "sqlite":
		return sqlx.Connect("sqlite", host)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

type ElectrodePosition struct {
	Label string  `db:"Label"`
	X     float64 `db:"X"`
	Y     float64 `db:"Y"`
	Z     float64 `db:"Z"`
}

// CatalogMontageReader reads montages from the ElectrodePositions table.
// The montage kind is the catalog name; dir is ignored.
type CatalogMontageReader struct {
	DB *sqlx.DB
}

func (c CatalogMontageReader) ReadMontage(kind string, dir string) (*Montage, error) {
	return LoadMontageFromDB(c.DB, kind)
}

func LoadMontageFromDB(db *sqlx.DB, name string) (*Montage, error) {
	query := "SELECT Label, X, Y, Z FROM ElectrodePositions WHERE Montage = ? ORDER BY Position"
	if verbosity > 0 {
		message := fmt.Sprintf("Reading montage %s from database", name)
		logger.Info(message, "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, name)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	montage := &Montage{Kind: name}
	for rows.Next() {
		result := ElectrodePosition{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		montage.Names = append(montage.Names, result.Label)
		montage.Positions = append(montage.Positions, [3]float64{result.X, result.Y, result.Z})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	if len(montage.Names) == 0 {
		return nil, fmt.Errorf("montage %q not found in database", name)
	}
	return montage, nil
}
