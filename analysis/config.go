package analysis

// Config holds analysis service configuration.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string

	// EventLimit caps event listings when no explicit limit is given.
	EventLimit int
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "analysis.db"
	}
	if c.EventLimit <= 0 {
		c.EventLimit = 50
	}
}
