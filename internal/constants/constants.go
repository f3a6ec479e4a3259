package constants

import "time"

const (
	AppName            = "habitgrid"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitgrid"
	DefaultDBPath      = "~/.config/habitgrid/habitgrid.db"
	DefaultConfigFile  = "habitgrid.yaml"
	DefaultListenAddr  = ":8080"
	DefaultCLIOwner    = "local"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day format used for entries (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Habit constraints
	MaxHabitNameLength = 255
	MinRating          = 0
	MaxRating          = 10

	// WeekLength is the number of days in a weekly grid
	WeekLength = 7

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitgrid-"
	BackupFileSuffix = ".db"

	// Connection pool defaults
	DefaultMaxConnections  = 25
	DefaultConnMaxLifetime = 5 * time.Minute

	// SQLite busy timeout in milliseconds
	SQLiteBusyTimeoutMs = 5000
)

// Environment variables
const (
	EnvConfig       = "HABITGRID_CONFIG"
	EnvDB           = "HABITGRID_DB"
	EnvDBConnection = "HABITGRID_DB_CONNECTION"
	EnvAddr         = "HABITGRID_ADDR"
	EnvTimezone     = "HABITGRID_TZ"
	EnvDebug        = "HABITGRID_DEBUG"
)
