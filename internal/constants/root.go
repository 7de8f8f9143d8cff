package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "orbitflow"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session-token"
	SecretKeyringUser  = "jwt-signing-secret"
	DefaultConfigDir   = "~/.config/orbitflow"
	DefaultConfigFile  = "~/.config/orbitflow/config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "orbitflow-"
	BackupFileSuffix = ".db"

	// Trend and analysis
	DefaultTrendDays = 30
	MaxTrendWindow   = 366
	DaysPerWeek      = 7

	// Bulk operations
	DeleteConcurrency = 8

	// Environment
	EnvPrefix        = "ORBITFLOW_"
	EnvSessionToken  = "ORBITFLOW_TOKEN"
	EnvDBConnection  = "ORBITFLOW_DB_CONNECTION"
	EnvJWTSecret     = "ORBITFLOW_JWT_SECRET"
	DefaultCachePref = "orbitflow:"
)

// Session States
const (
	StateHabits SessionState = iota
	StateTrend
	StateTips
	StateAddHabit
	StateConfirmDelete
	StateConfirmDeleteAll
)
