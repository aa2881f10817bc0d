package db

// Config holds connection settings for the engine's relational store.
// Type selects the dialector (mysql, postgres or sqlite); the ConnMax*
// values are in seconds.
type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}
