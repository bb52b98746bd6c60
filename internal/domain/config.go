package domain

// Config represents the main application configuration
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Trial   TrialConfig   `mapstructure:"trial"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

// RulesConfig selects and locates the rule table backend
type RulesConfig struct {
	Backend    string `mapstructure:"backend"` // "xlsx", "sqlite"
	XLSXPath   string `mapstructure:"xlsx_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Sheet      string `mapstructure:"sheet"`
}

// TrialConfig locates the trial assignment workbooks
type TrialConfig struct {
	StatusPath   string `mapstructure:"status_path"`
	CriteriaPath string `mapstructure:"criteria_path"`
}

// CacheConfig represents workbook cache configuration
type CacheConfig struct {
	MaxWorkbooks int `mapstructure:"max_workbooks"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json", "text"
	Output string `mapstructure:"output"` // "stdout", "stderr"
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}
