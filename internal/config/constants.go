package config

// Constants defining default values for application configuration
const (
	DefaultDBPath     = "./gameday.db"
	DefaultOutputPath = "./public/current.json"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultInterval = 1 // Minutes between feed generation runs, 0 for one-shot

	DefaultSessionTTLMinutes      = 120
	DefaultSessionRotationMinutes = 5

	DefaultLogLevel = "debug"
)
