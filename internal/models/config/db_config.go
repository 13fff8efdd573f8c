package config

// DatabaseConfig is the remote relational store connection config.
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig is the local snapshot cache connection config.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}
