package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath путь к файлу конфигурации по умолчанию
const DefaultPath = "config.yaml"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Detector DetectorConfig `mapstructure:"detector"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Overlay  OverlayConfig  `mapstructure:"overlay"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUpload    int64         `mapstructure:"max_upload"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DetectorConfig struct {
	URL       string        `mapstructure:"url"`
	FormField string        `mapstructure:"form_field"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MinScore  float64       `mapstructure:"min_score"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type OverlayConfig struct {
	DefaultLabel     string        `mapstructure:"default_label"`
	DisplayMaxSide   int           `mapstructure:"display_max_side"`
	DevicePixelRatio float64       `mapstructure:"device_pixel_ratio"`
	MinBoxPixels     float64       `mapstructure:"min_box_pixels"`
	FillAlpha        float64       `mapstructure:"fill_alpha"`
	FrameInterval    time.Duration `mapstructure:"frame_interval"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
	JPEGQuality      int           `mapstructure:"jpeg_quality"`
}

// Load читает конфигурацию из YAML-файла. Пустой путь означает только
// значения по умолчанию. Переменные окружения (и .env) перекрывают файл:
// server.port задаётся как SERVER_PORT, токен бота как TELEGRAM_TOKEN.
func Load(configPath string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", "TELEGRAM_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New загружает конфигурацию из DefaultPath; если файла нет, берёт
// значения по умолчанию с учётом окружения.
func New() *Config {
	cfg, err := Load(DefaultPath)
	if err == nil {
		return cfg
	}
	if cfg, err = Load(""); err == nil {
		return cfg
	}
	return getDefaultConfig()
}

func setDefaults(v *viper.Viper) {
	d := getDefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_upload", d.Server.MaxUpload)

	v.SetDefault("telegram.token", d.Telegram.Token)

	v.SetDefault("detector.url", d.Detector.URL)
	v.SetDefault("detector.form_field", d.Detector.FormField)
	v.SetDefault("detector.timeout", d.Detector.Timeout)
	v.SetDefault("detector.min_score", d.Detector.MinScore)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("overlay.default_label", d.Overlay.DefaultLabel)
	v.SetDefault("overlay.display_max_side", d.Overlay.DisplayMaxSide)
	v.SetDefault("overlay.device_pixel_ratio", d.Overlay.DevicePixelRatio)
	v.SetDefault("overlay.min_box_pixels", d.Overlay.MinBoxPixels)
	v.SetDefault("overlay.fill_alpha", d.Overlay.FillAlpha)
	v.SetDefault("overlay.frame_interval", d.Overlay.FrameInterval)
	v.SetDefault("overlay.render_timeout", d.Overlay.RenderTimeout)
	v.SetDefault("overlay.jpeg_quality", d.Overlay.JPEGQuality)
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			Mode:         "debug",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxUpload:    20 * 1024 * 1024,
		},
		Detector: DetectorConfig{
			URL:       "http://localhost:8000/predict",
			FormField: "file",
			Timeout:   30 * time.Second,
			MinScore:  0,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     24 * time.Hour,
		},
		Overlay: OverlayConfig{
			DefaultLabel:     "Anomaly",
			DisplayMaxSide:   1280,
			DevicePixelRatio: 1,
			MinBoxPixels:     4,
			FillAlpha:        0.18,
			FrameInterval:    16 * time.Millisecond,
			RenderTimeout:    10 * time.Second,
			JPEGQuality:      90,
		},
	}
}
