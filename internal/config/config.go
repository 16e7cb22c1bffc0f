package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config models caltimist.yml: the credentials and holiday source shared by
// all calendars, the reportable users, and the billable projects.
type Config struct {
	General  General   `yaml:"general"`
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
}

// General holds source-wide settings: fallback HTTP basic-auth credentials
// and the public-holiday calendar URL (optional).
type General struct {
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	PublicHolidays string `yaml:"public_holidays"`
}

// User is one reportable calendar owner.
type User struct {
	Name string `yaml:"name"`
	// Cal is the ICS calendar URL for this user.
	Cal string `yaml:"cal"`
	// Vacation is the annual vacation-day allowance.
	Vacation int `yaml:"vacation"`
	// MonthHours is the monthly contract-hour figure.
	MonthHours int `yaml:"monthhours"`
}

// Project carries the billing rates of one project. Rates are decimal
// strings in the file ("85.50") and are held as centi-units internally.
type Project struct {
	Name         string `yaml:"name"`
	Onsite       string `yaml:"onsite"`
	Remote       string `yaml:"remote"`
	OnsiteCentis int64  `yaml:"-"`
	RemoteCentis int64  `yaml:"-"`
}

// Load reads and validates the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the config meets required structure and resolves the
// fixed-point project rates.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i := range c.Users {
		u := &c.Users[i]
		if u.Name == "" {
			return fmt.Errorf("config.users[%d].name is required", i)
		}
		if seen[u.Name] {
			return fmt.Errorf("duplicate user %s", u.Name)
		}
		seen[u.Name] = true
		if u.Cal == "" {
			return fmt.Errorf("user %s has no cal URL", u.Name)
		}
		if u.Vacation < 0 || u.MonthHours < 0 {
			return fmt.Errorf("user %s has negative vacation or monthhours", u.Name)
		}
	}
	for i := range c.Projects {
		p := &c.Projects[i]
		if p.Name == "" {
			return fmt.Errorf("config.projects[%d].name is required", i)
		}
		var err error
		if p.OnsiteCentis, err = ParseCentiRate(p.Onsite); err != nil {
			return fmt.Errorf("project %s onsite rate: %w", p.Name, err)
		}
		if p.RemoteCentis, err = ParseCentiRate(p.Remote); err != nil {
			return fmt.Errorf("project %s remote rate: %w", p.Name, err)
		}
	}
	return nil
}

// UserByName returns the user entry with the given name.
func (c *Config) UserByName(name string) (*User, bool) {
	for i := range c.Users {
		if c.Users[i].Name == name {
			return &c.Users[i], true
		}
	}
	return nil, false
}

// ProjectByName returns the project entry with the given name.
func (c *Config) ProjectByName(name string) (*Project, bool) {
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			return &c.Projects[i], true
		}
	}
	return nil, false
}

const maxCentiRate = 65535

// ParseCentiRate converts a decimal rate string to hundredths, rounding half
// up. The empty string is a zero rate.
func ParseCentiRate(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("no number found in %q", s)
	}
	v := f*100.0 + .5
	if v < 0 || v > maxCentiRate {
		return 0, fmt.Errorf("rate %q out of range", s)
	}
	return int64(v), nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "caltimist", "caltimist.yml"), nil
}
