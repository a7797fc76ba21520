package internal

const (
	DotEnvPath        = "./.env"
	MigrationsDir     = "migrations"
	ColumnConfigPath  = "columns.yml"
	DBDateLayout      = "2006-01-02"
	DBTimestampLayout = "2006-01-02 15:04:05"
	RunSlotCount      = 5
)
