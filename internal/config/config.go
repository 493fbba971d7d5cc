package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации сервера измерений.

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	World    WorldConfig    `yaml:"world"`
	Weather  WeatherConfig  `yaml:"weather"`
	Storage  StorageConfig  `yaml:"storage"`
	EventBus EventBusConfig `yaml:"eventbus"`
}

type ServerConfig struct {
	TickRate    int `yaml:"tick_rate"` // Тиков в секунду
	MetricsPort int `yaml:"metrics_port"`
}

type WorldConfig struct {
	Seed     int64  `yaml:"seed"`
	DataPath string `yaml:"data_path"`
}

type WeatherConfig struct {
	MinDurationTicks uint64 `yaml:"min_duration_ticks"` // Минимальная длительность фазы погоды
	MaxDurationTicks uint64 `yaml:"max_duration_ticks"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"` // badger | memory
	RedisAddr string `yaml:"redis_addr"`
	MariaDSN  string `yaml:"maria_dsn"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

// GetTickRate возвращает частоту тиков с fallback значением
func (s *ServerConfig) GetTickRate() int {
	if s.TickRate > 0 {
		return s.TickRate
	}
	return 20
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "DIM_METRICS_PORT", 2112)
}

// GetMinDuration возвращает минимальную длительность фазы погоды в тиках
func (w *WeatherConfig) GetMinDuration() uint64 {
	if w.MinDurationTicks > 0 {
		return w.MinDurationTicks
	}
	return 12000 // 10 минут при 20 TPS
}

// GetMaxDuration возвращает максимальную длительность фазы погоды в тиках
func (w *WeatherConfig) GetMaxDuration() uint64 {
	if w.MaxDurationTicks > w.MinDurationTicks {
		return w.MaxDurationTicks
	}
	return w.GetMinDuration() * 2
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV DIM_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DIM_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
