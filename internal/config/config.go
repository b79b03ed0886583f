package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "AIRADIO"

type Config struct {
	TTS     TTSConfig     `mapstructure:"tts"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Player  PlayerConfig  `mapstructure:"player"`
	Library LibraryConfig `mapstructure:"library"`
	History HistoryConfig `mapstructure:"history"`
	Diary   DiaryConfig   `mapstructure:"diary"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Jokes   JokesConfig   `mapstructure:"jokes"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Log     LogConfig     `mapstructure:"log"`
}

type TTSConfig struct {
	Type      string  `mapstructure:"type"`
	Language  string  `mapstructure:"language"`
	Tier      string  `mapstructure:"tier"`
	Speed     float64 `mapstructure:"speed"`
	Volume    float64 `mapstructure:"volume"`
	CachePath string  `mapstructure:"cache_path"`
}

type AudioConfig struct {
	Backend      string  `mapstructure:"backend"`
	SampleRate   int     `mapstructure:"sample_rate"`
	VirtualSpeed float64 `mapstructure:"virtual_speed"`
	FadeCurve    string  `mapstructure:"fade_curve"`
}

type PlayerConfig struct {
	DJ             string        `mapstructure:"dj"`
	Volume         float64       `mapstructure:"volume"`
	MusicRamp      time.Duration `mapstructure:"music_ramp"`
	SkipFade       time.Duration `mapstructure:"skip_fade"`
	DuckLevel      float64       `mapstructure:"duck_level"`
	DuckRamp       time.Duration `mapstructure:"duck_ramp"`
	SummaryTimeout time.Duration `mapstructure:"summary_timeout"`
	Apology        string        `mapstructure:"apology"`
}

type LibraryConfig struct {
	Dir string `mapstructure:"dir"`
}

type HistoryConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	RedisAddr string `mapstructure:"redis_addr"`
}

type DiaryConfig struct {
	Path string `mapstructure:"path"`
}

type LLMConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

type JokesConfig struct {
	URL string `mapstructure:"url"`
}

type RemoteConfig struct {
	Listen string `mapstructure:"listen"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers the default of every key on the global viper.
func SetDefaults() {
	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	home := dataDirectory()

	v.SetDefault("tts.type", "auto") // Auto-select best engine
	v.SetDefault("tts.language", "en-US")
	v.SetDefault("tts.tier", "neural")
	v.SetDefault("tts.speed", 1.0)
	v.SetDefault("tts.volume", 1.0)
	v.SetDefault("tts.cache_path", filepath.Join(cacheDirectory(), "tts"))

	v.SetDefault("audio.backend", "speaker")
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.virtual_speed", 1.0)
	v.SetDefault("audio.fade_curve", "smoothstep")

	v.SetDefault("player.dj", "the DJ")
	v.SetDefault("player.volume", 0.75)
	v.SetDefault("player.music_ramp", time.Second)
	v.SetDefault("player.skip_fade", 500*time.Millisecond)
	v.SetDefault("player.duck_level", 0.3)
	v.SetDefault("player.duck_ramp", 300*time.Millisecond)
	v.SetDefault("player.summary_timeout", 10*time.Second)
	v.SetDefault("player.apology", "Sorry, I couldn't find that song this time. Let's keep going.")

	v.SetDefault("library.dir", "")

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.path", filepath.Join(home, "history.json"))
	v.SetDefault("history.redis_addr", "localhost:6379")

	v.SetDefault("diary.path", filepath.Join(home, "diaries"))

	v.SetDefault("llm.url", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3.2")

	v.SetDefault("jokes.url", "https://official-joke-api.appspot.com/random_joke")

	v.SetDefault("remote.listen", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Init loads .env, the config file and AIRADIO_* environment overrides into
// the global viper. A missing .env or config file is not an error.
func Init(configFile string) error {
	return initViper(viper.GetViper(), configFile, ".env")
}

func initViper(v *viper.Viper, configFile, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("airadio")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.airadio")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load returns the typed configuration from the global viper.
func Load() (Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SetupLogging configures the standard logrus logger.
func SetupLogging(cfg LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func dataDirectory() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".airadio")
	}
	return ".airadio"
}

func cacheDirectory() string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "airadio")
	}
	return filepath.Join(dataDirectory(), "cache")
}
