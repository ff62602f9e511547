package excel

// Config says how case columns become variables.
type Config struct {
	// Sheet is the worksheet to read; empty means the first sheet.
	Sheet string `json:"sheet" yaml:"sheet"`
	// DV names the dependent variable column. Empty leaves the system neutral.
	DV string `json:"dv" yaml:"dv"`
	// Frequency names a column holding case weights. Empty counts each row once.
	Frequency string `json:"frequency" yaml:"frequency"`
	// Ignore lists columns left out of the analysis.
	Ignore []string `json:"ignore" yaml:"ignore"`
}

// DefaultConfig reads the first sheet into a neutral system.
func DefaultConfig() Config {
	return Config{}
}

func (c Config) ignored(header string) bool {
	for _, h := range c.Ignore {
		if h == header {
			return true
		}
	}
	return false
}
