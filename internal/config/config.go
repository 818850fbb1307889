package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	EnvPrefix = "TIMETABLE"
)

type Config struct {
	Env      string `validate:"oneof=development production"`
	Strategy string `validate:"oneof=greedy dsatur rlf backtracking"`
	Seed     int64  // 0 seeds from the clock
	Matcher  string `validate:"oneof=augmenting hopcroft-karp"`

	// Largest graph the backtracking strategy is run on.
	ExactLimit int `validate:"min=1"`

	Input  InputConfig
	Export ExportConfig
	Log    LogConfig
	Server ServerConfig
}

type InputConfig struct {
	NodeColumn       string `validate:"required"`
	PreferenceColumn string `validate:"required"`
	Constraints      []string
	Delimiter        rune
}

type ExportConfig struct {
	StartDate      string `validate:"omitempty,datetime=2006-01-02"`
	TitleColumn    string
	RoomColumn     string
	LecturerColumn string
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type ServerConfig struct {
	Port         int   `validate:"min=1,max=65535"`
	MaxBodyBytes int64 `validate:"min=1"`
}

// Load reads, in increasing precedence: defaults, the optional config file at path
// (any format viper understands), a .env file in the working directory and
// TIMETABLE_* environment variables. Nested keys use underscores in the environment,
// e.g. TIMETABLE_INPUT_NODE_COLUMN.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config %v: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Env:      v.GetString("env"),
		Strategy: strings.ToLower(v.GetString("strategy")),
		Seed:     v.GetInt64("seed"),
		Matcher:  strings.ToLower(v.GetString("matcher")),

		ExactLimit: v.GetInt("exact_limit"),
	}

	cfg.Input = InputConfig{
		NodeColumn:       v.GetString("input.node_column"),
		PreferenceColumn: v.GetString("input.preference_column"),
		Constraints:      splitAndTrim(strings.Join(v.GetStringSlice("input.constraints"), ",")),
		Delimiter:        parseDelimiter(v.GetString("input.delimiter")),
	}

	cfg.Export = ExportConfig{
		StartDate:      v.GetString("export.start_date"),
		TitleColumn:    v.GetString("export.title_column"),
		RoomColumn:     v.GetString("export.room_column"),
		LecturerColumn: v.GetString("export.lecturer_column"),
	}

	cfg.Log = LogConfig{
		Level:  strings.ToLower(v.GetString("log.level")),
		Format: strings.ToLower(v.GetString("log.format")),
	}

	cfg.Server = ServerConfig{
		Port:         v.GetInt("server.port"),
		MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("strategy", "dsatur")
	v.SetDefault("seed", 0)
	v.SetDefault("matcher", "augmenting")
	v.SetDefault("exact_limit", 30)

	v.SetDefault("input.node_column", "course_id")
	v.SetDefault("input.preference_column", "preferred_time")
	v.SetDefault("input.constraints", []string{})
	v.SetDefault("input.delimiter", ",")

	v.SetDefault("export.start_date", "")
	v.SetDefault("export.title_column", "")
	v.SetDefault("export.room_column", "room")
	v.SetDefault("export.lecturer_column", "lecturer")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.max_body_bytes", 1<<20)
}

// parseDelimiter takes the first rune, with "\t" and "tab" standing for a tab.
func parseDelimiter(raw string) rune {
	switch raw {
	case "":
		return ','
	case `\t`, "tab":
		return '\t'
	}
	return []rune(raw)[0]
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
