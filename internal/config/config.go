package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Platform struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type Poll struct {
	Tickets time.Duration `mapstructure:"tickets"`
	Profile time.Duration `mapstructure:"profile"`
}

type Accrual struct {
	MinClaim float64 `mapstructure:"min_claim"`
}

type Market struct {
	Enabled bool   `mapstructure:"enabled"`
	Quote   string `mapstructure:"quote"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type Config struct {
	Platform Platform `mapstructure:"platform"`
	HTTP     HTTP     `mapstructure:"http"`
	Poll     Poll     `mapstructure:"poll"`
	Accrual  Accrual  `mapstructure:"accrual"`
	Market   Market   `mapstructure:"market"`
	Log      Log      `mapstructure:"log"`
}

// Load читает config.yaml (если есть) и переменные окружения MINERDASH_*.
// Путь "" означает поиск в текущей директории.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("platform.base_url", "http://localhost:3000")
	v.SetDefault("platform.timeout", 15*time.Second)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("poll.tickets", 20*time.Second)
	v.SetDefault("poll.profile", time.Minute)
	v.SetDefault("accrual.min_claim", 0.0001)
	v.SetDefault("market.enabled", true)
	v.SetDefault("market.quote", "USDT")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MINERDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// файл не обязателен, достаточно дефолтов и окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("config: ошибка чтения %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: ошибка разбора: %w", err)
	}
	if cfg.Poll.Tickets <= 0 || cfg.Poll.Profile <= 0 {
		return nil, fmt.Errorf("config: интервалы опроса должны быть > 0")
	}
	return &cfg, nil
}
