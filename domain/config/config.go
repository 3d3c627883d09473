package config

// Config represents the structure of config.yml used by the tool.
// Every field is optional; Defaults fills in what the file leaves empty.
type Config struct {
	GitHub struct {
		Username string `yaml:"username"`
		Years    int    `yaml:"years"`
	} `yaml:"github"`
	Files struct {
		Input  string `yaml:"input"`
		Output string `yaml:"output"`
		Charts string `yaml:"charts"`
	} `yaml:"files"`
	Preview struct {
		Rows int `yaml:"rows"`
	} `yaml:"preview"`
	Web struct {
		Addr    string `yaml:"addr"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"web"`
}

const (
	DefaultInput       = "contributions.csv"
	DefaultOutput      = "cumulative_contributions_table.csv"
	DefaultCharts      = "contribution_charts.png"
	DefaultPreviewRows = 10
	DefaultYears       = 5
	DefaultWebAddr     = ":8080"
	DefaultWebDataDir  = "."
)

// Defaults returns a Config populated with the built-in file names and limits.
func Defaults() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.GitHub.Years <= 0 {
		c.GitHub.Years = DefaultYears
	}
	if c.Files.Input == "" {
		c.Files.Input = DefaultInput
	}
	if c.Files.Output == "" {
		c.Files.Output = DefaultOutput
	}
	if c.Files.Charts == "" {
		c.Files.Charts = DefaultCharts
	}
	if c.Preview.Rows <= 0 {
		c.Preview.Rows = DefaultPreviewRows
	}
	if c.Web.Addr == "" {
		c.Web.Addr = DefaultWebAddr
	}
	if c.Web.DataDir == "" {
		c.Web.DataDir = DefaultWebDataDir
	}
}
