package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	QuestionsPath     string        `mapstructure:"questions_path" yaml:"questions_path"`
	CountdownFrom     int           `mapstructure:"countdown_from" yaml:"countdown_from"`
	RaceDuration      time.Duration `mapstructure:"race_duration" yaml:"race_duration"`
	PythonBin         string        `mapstructure:"python_bin" yaml:"python_bin"`
	GradeTimeout      time.Duration `mapstructure:"grade_timeout" yaml:"grade_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":9000",
		BaseURL:           "http://localhost:3000",
		QuestionsPath:     "questions.json",
		CountdownFrom:     5,
		RaceDuration:      5 * time.Minute,
		PythonBin:         "python3",
		GradeTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.QuestionsPath != "" {
		c.QuestionsPath = other.QuestionsPath
	}
	if other.CountdownFrom != 0 {
		c.CountdownFrom = other.CountdownFrom
	}
	if other.RaceDuration != 0 {
		c.RaceDuration = other.RaceDuration
	}
	if other.PythonBin != "" {
		c.PythonBin = other.PythonBin
	}
	if other.GradeTimeout != 0 {
		c.GradeTimeout = other.GradeTimeout
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
