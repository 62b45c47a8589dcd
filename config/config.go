package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Limits LimitsConfig `mapstructure:"limits"`
	Blur   BlurConfig   `mapstructure:"blur"`
	Output OutputConfig `mapstructure:"output"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	OriginPatterns []string      `mapstructure:"origin_patterns"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LimitsConfig 载荷大小限制，WebSocket 读限制和导出请求上限共用同一个值
type LimitsConfig struct {
	MaxPayloadSize int64 `mapstructure:"max_payload_size"`
}

type BlurConfig struct {
	Backend       string `mapstructure:"backend"`
	DefaultRadius int    `mapstructure:"default_radius"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	QueueTimeout  int    `mapstructure:"queue_timeout"`
}

type OutputConfig struct {
	MaskDir   string `mapstructure:"mask_dir"`
	SourceDir string `mapstructure:"source_dir"`
}

const envPrefix = "MASKBLUR"

// Load 从 YAML 文件加载配置，环境变量（MASKBLUR_ 前缀）优先
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// FromEnv 仅使用默认值和环境变量构建配置
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err == nil {
		return cfg
	}
	// 配置文件不存在时仍然允许环境变量覆盖
	if cfg, err = FromEnv(); err == nil {
		return cfg
	}
	return getDefaultConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.ping_interval", 25*time.Second)
	v.SetDefault("server.origin_patterns", []string{})

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("limits.max_payload_size", 50*1024*1024)

	v.SetDefault("blur.backend", "bild")
	v.SetDefault("blur.default_radius", 16)
	v.SetDefault("blur.max_concurrent", 4)
	v.SetDefault("blur.queue_timeout", 30)

	v.SetDefault("output.mask_dir", "./mask_outputs")
	v.SetDefault("output.source_dir", "./source_outputs")
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":5000",
			Mode:         "debug",
			ReadTimeout:  60 * time.Second,
			PingInterval: 25 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     time.Hour,
		},
		Limits: LimitsConfig{
			MaxPayloadSize: 50 * 1024 * 1024,
		},
		Blur: BlurConfig{
			Backend:       "bild",
			DefaultRadius: 16,
			MaxConcurrent: 4,
			QueueTimeout:  30,
		},
		Output: OutputConfig{
			MaskDir:   "./mask_outputs",
			SourceDir: "./source_outputs",
		},
	}
}
