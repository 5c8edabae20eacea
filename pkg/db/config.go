package db

// Config describes the database connection. Type selects the dialect:
// postgres, mysql or sqlite (Name is the file path for sqlite).
type Config struct {
	Type     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	// Pool settings; zero values leave the driver defaults in place.
	// Lifetimes are in seconds.
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
