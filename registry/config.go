package registry

// Config holds the trust registry configuration.
type Config struct {
	DBPath string `json:"db_path" yaml:"db_path"`

	// SeedBuiltins inserts the built-in Swedish source set on startup if
	// the registry is empty.
	SeedBuiltins bool `json:"seed_builtins" yaml:"seed_builtins"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "registry.db"
	}
}
