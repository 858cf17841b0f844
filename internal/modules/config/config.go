package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	stateFileENV      = "STATE_FILE"
	logFileENV        = "LOG_FILE"
)

// DefaultInstruments: список отслеживаемых инструментов по умолчанию.
var DefaultInstruments = []string{
	// crypto
	"BTC-USD", "ETH-USD", "SOL-USD", "AVAX-USD",

	// Borsa Istanbul
	"TUPRS.IS", "DOAS.IS", "THYAO.IS", "MAVI.IS", "ASELS.IS", "KONTR.IS",
	"ARDYZ.IS", "MIATK.IS", "MPARK.IS", "EKGYO.IS", "LOGO.IS", "SMRTG.IS",
	"GWIND.IS", "YEOTK.IS", "OYAKC.IS", "EREGL.IS", "DESA.IS", "BIMAS.IS",
	"TUKAS.IS",

	// US equities
	"GOOGL", "NVDA", "META", "INTC", "AAPL", "MSFT",
}

// Config ...
type Config struct {
	Instruments []string `yaml:"instruments" validate:"required,min=1,dive,required"`

	Strategy struct {
		FastInterval string `yaml:"fast_interval" default:"4h" validate:"required"`
		FastRange    string `yaml:"fast_range" default:"720d" validate:"required"`
		FastShort    int    `yaml:"fast_short" default:"100" validate:"gt=0,ltfield=FastLong"`
		FastLong     int    `yaml:"fast_long" default:"200" validate:"gt=0"`

		TrendInterval string `yaml:"trend_interval" default:"1d" validate:"required"`
		TrendRange    string `yaml:"trend_range" default:"600d" validate:"required"`
		TrendShort    int    `yaml:"trend_short" default:"100" validate:"gt=0,ltfield=TrendLong"`
		TrendLong     int    `yaml:"trend_long" default:"200" validate:"gt=0"`

		// проценты: 10 => 10%
		StopLossPct           float64 `yaml:"stop_loss_pct" default:"10" validate:"gt=0,lt=100"`
		TakeProfitPct         float64 `yaml:"take_profit_pct" default:"40" validate:"gt=0"`
		UpgradedTakeProfitPct float64 `yaml:"upgraded_take_profit_pct" default:"100" validate:"gtfield=TakeProfitPct"`
	} `yaml:"strategy"`

	Market struct {
		BaseURL           string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
		Timeout           time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
		Retries           int           `yaml:"retries" default:"3" validate:"gte=1"`
		RetryPause        time.Duration `yaml:"retry_pause" default:"2s" validate:"gte=0"`
		RequestsPerSecond float64       `yaml:"requests_per_second" default:"2" validate:"gt=0"`
	} `yaml:"market"`

	Telegram struct {
		Token       string        `yaml:"token"`
		ChatID      int64         `yaml:"chat_id"`
		Channel     string        `yaml:"channel" validate:"omitempty,startswith=@"` // @username канала, вместо chat_id
		APIEndpoint string        `yaml:"api_endpoint" default:"https://api.telegram.org/bot%s/%s"`
		Timeout     time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"telegram"`

	Notify struct {
		InstrumentWindow time.Duration `yaml:"instrument_window" default:"60s" validate:"gte=0"`
		GlobalWindow     time.Duration `yaml:"global_window" default:"10s" validate:"gte=0"`
	} `yaml:"notify"`

	State struct {
		Path string `yaml:"path" default:"state.json" validate:"required"`
	} `yaml:"state"`

	Log struct {
		Path      string `yaml:"path" default:"log.txt" validate:"required"`
		MaxSizeMB int    `yaml:"max_size_mb" default:"100" validate:"gt=0"`
		Backups   int    `yaml:"backups" default:"50" validate:"gte=0"`
	} `yaml:"log"`

	Runner struct {
		Interval        time.Duration `yaml:"interval" default:"60s" validate:"gt=0"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"120s" validate:"gt=0"` // ждём текущий инструмент
	} `yaml:"runner"`

	Service struct {
		Addr string `yaml:"addr" default:":8080"`
	} `yaml:"service"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host" default:"localhost"`
		Port    int    `yaml:"port" default:"6831"`
	} `yaml:"tracing"`
}

var validate = validator.New()

// NewConfig читает configs/$CONFIG_FILE (если есть), накладывает ENV и валидирует.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	dir := getenvDefault(configDirENV, "configs")
	name := getenvDefault(configFilePathENV, "values_local.yaml")
	return Load(filepath.Join(dir, name))
}

// Load builds a config from defaults, the optional YAML file at path and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "set defaults")
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, errors.Wrapf(err, "decode config file %s", path)
		}
	case os.IsNotExist(err):
		// файла нет, работаем на дефолтах
	default:
		return nil, errors.Wrapf(err, "read config file %s", path)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Instruments) == 0 {
		cfg.Instruments = append([]string(nil), DefaultInstruments...)
	}
	cfg.Instruments = dedupe(cfg.Instruments)

	if err := validate.Struct(&cfg); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if v := strings.TrimSpace(os.Getenv(chatTelegramENV)); v != "" {
		// числовой id чата или @username публичного канала
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID, cfg.Telegram.Channel = id, ""
		} else if strings.HasPrefix(v, "@") && len(v) > 1 {
			cfg.Telegram.ChatID, cfg.Telegram.Channel = 0, v
		} else {
			return errors.Errorf("config: %s=%q is neither a numeric chat id nor an @channel", chatTelegramENV, v)
		}
	}
	cfg.State.Path = getenvDefault(stateFileENV, cfg.State.Path)
	cfg.Log.Path = getenvDefault(logFileENV, cfg.Log.Path)
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
