package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-dimension/internal/config"
	"github.com/annel0/mmo-dimension/internal/eventbus"
	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/storage"
	"github.com/annel0/mmo-dimension/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		fmt.Printf("❌ Не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🎮 Запуск сервера измерений...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = &config.Config{}
		logging.Info("Конфигурация не задана, используются значения по умолчанию")
	}

	if err := run(cfg); err != nil {
		logging.Error("❌ Фатальная ошибка: %v", err)
		os.Exit(1)
	}

	logging.Info("Сервер остановлен")
}

func run(cfg *config.Config) error {
	// Шина событий: JetStream при заданном URL, иначе in-memory
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		js, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream,
			time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			return fmt.Errorf("не удалось подключиться к NATS: %w", err)
		}
		defer js.Close()
		bus = js
	} else {
		bus = eventbus.NewMemoryBus(1024)
	}

	busMetrics := eventbus.NewMetricsExporter(bus)
	busMetrics.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))
	defer busMetrics.Stop()

	weather := world.WeatherConfig{
		MinDurationTicks: int64(cfg.Weather.GetMinDuration()),
		MaxDurationTicks: int64(cfg.Weather.GetMaxDuration()),
		Seed:             cfg.World.Seed,
	}

	registry := world.NewDimensionRegistry()
	w := world.NewWorld()

	// Поднимаем все встроенные измерения, каждое со своим хранилищем
	builtins := []int32{world.DimensionOverworld, world.DimensionNether, world.DimensionTheEnd}
	for _, typeID := range builtins {
		typ, err := world.DimensionTypeByID(typeID)
		if err != nil {
			return err
		}

		store, closeStore, err := newChunkStore(cfg, typ)
		if err != nil {
			return fmt.Errorf("хранилище для %s: %w", typ.Name, err)
		}
		if closeStore != nil {
			defer closeStore()
		}

		dim, err := registry.Create(typeID, world.DimensionDeps{
			Store:   store,
			Bus:     bus,
			Weather: weather,
		})
		if err != nil {
			return err
		}

		id, ok := w.Attach(dim)
		if !ok {
			return fmt.Errorf("не удалось прикрепить измерение %s", typ.Name)
		}

		metrics := world.NewQueueMetrics(id, dim.Queue)
		defer metrics.Stop()
	}

	// Репозиторий позиций игроков: сток на шине сохраняет последнюю
	// позицию при каждом уходе игрока из измерения
	repo, closeRepo, err := newPositionRepo(cfg)
	if err != nil {
		return err
	}
	if closeRepo != nil {
		defer closeRepo()
	}

	sink, err := storage.NewPositionSink(context.Background(), bus, repo)
	if err != nil {
		return err
	}
	defer sink.Close()

	// Игровой цикл
	tickRate := cfg.Server.GetTickRate()
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logging.Info("🎮 Сервер запущен: %d измерений, %d TPS", len(w.Dimensions()), tickRate)

	for {
		select {
		case <-ticker.C:
			w.Tick()
		case sig := <-sigCh:
			logging.Info("Получен сигнал %v, останавливаемся...", sig)
			return nil
		}
	}
}

// newChunkStore создаёт хранилище чанков по конфигурации.
// Badger-бэкенд складывает каждое измерение в свой подкаталог.
func newChunkStore(cfg *config.Config, typ world.DimensionType) (world.ChunkStore, func(), error) {
	gen := world.NewWorldGenerator(cfg.World.Seed, typ)

	if cfg.Storage.Backend == "badger" {
		dataPath := cfg.World.DataPath
		if dataPath == "" {
			dataPath = "data"
		}
		store, err := storage.NewBadgerChunkStore(
			fmt.Sprintf("%s/%s", dataPath, typ.Name), gen)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}

	return storage.NewMemoryChunkStore(gen), nil, nil
}

// newPositionRepo выбирает реализацию PositionRepo: MariaDB, Redis или память
func newPositionRepo(cfg *config.Config) (storage.PositionRepo, func(), error) {
	if cfg.Storage.MariaDSN != "" {
		repo, err := storage.NewMariaPositionRepo(cfg.Storage.MariaDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("MariaDB недоступна: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	}

	if cfg.Storage.RedisAddr != "" {
		rc := storage.DefaultRedisConfig()
		rc.Addr = cfg.Storage.RedisAddr
		repo, err := storage.NewRedisPositionRepo(rc)
		if err != nil {
			return nil, nil, fmt.Errorf("Redis недоступен: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	}

	logging.Warn("Персистентное хранилище позиций не настроено, используется память")
	return storage.NewMemoryPositionRepo(), nil, nil
}
