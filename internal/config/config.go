package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/aikawam/vcwatch/internal/domain"
)

const (
	keyToken         = "token"
	keyTargetChannel = "target_channel"
	keyGuildID       = "guild_id"
	keyLogLevel      = "log_level"
	keyHealthPort    = "port"
	keyDataDir       = "data_dir"

	defaultConfigFile = "vcwatch.toml"
	envConfigFile     = "VCWATCH_CONFIG"

	defaultCutoffHour   = 23
	defaultCutoffMinute = 59
)

// Config is resolved once at startup. A missing token or target channel is
// fatal before any core component is constructed.
type Config struct {
	Token         string
	TargetChannel domain.ChannelID
	GuildID       string
	LogLevel      string
	HealthPort    int
	DataDir       string
	CutoffHour    int
	CutoffMinute  int
}

// fileSchema is the optional vcwatch.toml overlay. Environment variables
// always win over file values.
type fileSchema struct {
	DataDir    string `toml:"data_dir"`
	HealthPort int    `toml:"health_port"`
	Cutoff     string `toml:"cutoff"`
}

func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyHealthPort, 8000)
	v.SetDefault(keyDataDir, "data")

	_ = v.BindEnv(keyToken, "DISCORD_TOKEN")
	_ = v.BindEnv(keyTargetChannel, "TARGET_VOICE_CHANNEL_ID")
	_ = v.BindEnv(keyGuildID, "GUILD_ID")
	_ = v.BindEnv(keyLogLevel, "LOG_LEVEL")
	_ = v.BindEnv(keyHealthPort, "PORT")
	_ = v.BindEnv(keyDataDir, "VCWATCH_DATA_DIR")

	cutoffHour, cutoffMinute := defaultCutoffHour, defaultCutoffMinute

	file, found, err := readFileOverlay()
	if err != nil {
		return Config{}, err
	}
	if found {
		if file.DataDir != "" {
			v.SetDefault(keyDataDir, file.DataDir)
		}
		if file.HealthPort != 0 {
			v.SetDefault(keyHealthPort, file.HealthPort)
		}
		if file.Cutoff != "" {
			cutoffHour, cutoffMinute, err = parseCutoff(file.Cutoff)
			if err != nil {
				return Config{}, err
			}
		}
	}

	cfg := Config{
		Token:         strings.TrimSpace(v.GetString(keyToken)),
		TargetChannel: domain.ChannelID(strings.TrimSpace(v.GetString(keyTargetChannel))),
		GuildID:       strings.TrimSpace(v.GetString(keyGuildID)),
		LogLevel:      v.GetString(keyLogLevel),
		HealthPort:    v.GetInt(keyHealthPort),
		DataDir:       v.GetString(keyDataDir),
		CutoffHour:    cutoffHour,
		CutoffMinute:  cutoffMinute,
	}

	if cfg.Token == "" {
		return Config{}, errors.New("DISCORD_TOKEN is not set")
	}
	if !isDigits(string(cfg.TargetChannel)) {
		return Config{}, errors.New("TARGET_VOICE_CHANNEL_ID is not set or not a channel id")
	}
	if cfg.GuildID != "" && !isDigits(cfg.GuildID) {
		return Config{}, errors.New("GUILD_ID is not a guild id")
	}

	return cfg, nil
}

func readFileOverlay() (fileSchema, bool, error) {
	path := os.Getenv(envConfigFile)
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, false, nil
		}
		return fileSchema{}, false, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, false, fmt.Errorf("decode config file %s: %w", path, err)
	}

	return file, true, nil
}

func parseCutoff(raw string) (int, int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse cutoff %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("cutoff %q out of range", raw)
	}

	return hour, minute, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
