package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./fellowship.db"

	// DefaultAPIURL is the default base URL of the church content API
	DefaultAPIURL = "http://localhost:3000/api"

	// DefaultDotEnvFile is loaded into the environment when present
	DefaultDotEnvFile = ".env"
)
