package unpacker

import (
	"fmt"
	"math"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type ChannelMappingEntry struct {
	Address     int    `db:"Address"`
	Type        string `db:"Type"`
	DetectorNum int    `db:"DetectorNum"`
}

// LoadChannelsFromDB reads the address map valid for runNumber.
func LoadChannelsFromDB(db *sqlx.DB, runNumber int) (ChannelMap, error) {
	query := "SELECT Address, Type, DetectorNum FROM ChannelMapping WHERE MinRun <= %d and MaxRun >= %d ORDER BY Address"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if verbosity > 0 {
		logger.Info("Channel mapping read from DB", "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	channels := make(ChannelMap)
	for rows.Next() {
		result := ChannelMappingEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		if result.Address < 0 || result.Address > math.MaxUint16 {
			return nil, fmt.Errorf("address %d out of range in channel mapping", result.Address)
		}
		channelType, err := ParseChannelType(result.Type)
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", result.Address, err)
		}
		info := ChannelInfo{Type: channelType, Index: result.DetectorNum}
		if err := channels.Add(uint16(result.Address), info); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating DB rows: %w", err)
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Read %d channels for run %d", len(channels), runNumber)
		logger.Info(message, "database")
	}
	return channels, nil
}
