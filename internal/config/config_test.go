package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.Server.GetTickRate(); got != 20 {
		t.Errorf("Ожидался tick rate по умолчанию 20, получен %d", got)
	}
	if got := cfg.Weather.GetMinDuration(); got != 12000 {
		t.Errorf("Ожидалась минимальная длительность 12000, получена %d", got)
	}
	if got := cfg.Weather.GetMaxDuration(); got != 24000 {
		t.Errorf("Ожидалась максимальная длительность 24000, получена %d", got)
	}
}

func TestConfig_Load(t *testing.T) {
	yaml := `
server:
  tick_rate: 10
  metrics_port: 9999
world:
  seed: 42
  data_path: /tmp/dims
weather:
  min_duration_ticks: 100
  max_duration_ticks: 500
storage:
  backend: badger
eventbus:
  url: nats://localhost:4222
  stream: TEST
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("Не удалось записать конфиг: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфига: %v", err)
	}

	if cfg.Server.GetTickRate() != 10 {
		t.Errorf("Ожидался tick rate 10, получен %d", cfg.Server.GetTickRate())
	}
	if cfg.Server.GetMetricsPort() != 9999 {
		t.Errorf("Ожидался порт 9999, получен %d", cfg.Server.GetMetricsPort())
	}
	if cfg.World.Seed != 42 {
		t.Errorf("Ожидался seed 42, получен %d", cfg.World.Seed)
	}
	if cfg.Weather.GetMinDuration() != 100 || cfg.Weather.GetMaxDuration() != 500 {
		t.Errorf("Длительности погоды прочитаны неверно: %d/%d",
			cfg.Weather.GetMinDuration(), cfg.Weather.GetMaxDuration())
	}
	if cfg.Storage.Backend != "badger" {
		t.Errorf("Ожидался backend badger, получен %q", cfg.Storage.Backend)
	}
	if cfg.EventBus.URL != "nats://localhost:4222" {
		t.Errorf("URL шины прочитан неверно: %q", cfg.EventBus.URL)
	}
}

func TestConfig_LoadMissing(t *testing.T) {
	// Пустой путь без ENV — конфиг не задан
	os.Unsetenv("DIM_CONFIG")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Незаданный конфиг не должен быть ошибкой: %v", err)
	}
	if cfg != nil {
		t.Error("Ожидался nil-конфиг при незаданном пути")
	}

	// Несуществующий файл — ошибка
	if _, err := Load("/nonexistent/config.yml"); err == nil {
		t.Error("Ожидалась ошибка для несуществующего файла")
	}
}

func TestConfig_MetricsPortEnvFallback(t *testing.T) {
	cfg := &Config{}

	t.Setenv("DIM_METRICS_PORT", "3333")
	if got := cfg.Server.GetMetricsPort(); got != 3333 {
		t.Errorf("Ожидался порт из ENV 3333, получен %d", got)
	}

	t.Setenv("DIM_METRICS_PORT", "мусор")
	if got := cfg.Server.GetMetricsPort(); got != 2112 {
		t.Errorf("Ожидался порт по умолчанию 2112, получен %d", got)
	}
}
