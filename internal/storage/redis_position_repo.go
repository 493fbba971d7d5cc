package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/vec"
)

// RedisPositionRepo реализует PositionRepo поверх Redis.
// Горячий кэш позиций перед персистентным хранилищем: записи живут
// ограниченное время и переживают только короткие обрывы сессий.
type RedisPositionRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       *logging.Logger
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		KeyPrefix: "dim:pos:",
		TTL:       5 * time.Minute,
	}
}

// redisPosition — сериализованная запись позиции
type redisPosition struct {
	Position  vec.Vec3  `json:"position"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRedisPositionRepo создаёт Redis-репозиторий позиций
func NewRedisPositionRepo(config *RedisConfig) (*RedisPositionRepo, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	// Проверяем подключение
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log := logging.GetStorageLogger()
	log.Info("🔴 Подключено к Redis: %s", config.Addr)

	return &RedisPositionRepo{
		client:    client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
		log:       log,
	}, nil
}

// Save сохраняет позицию игрока в Redis.
func (r *RedisPositionRepo) Save(ctx context.Context, userID uint64, pos vec.Vec3) error {
	if err := validatePosition(userID, pos); err != nil {
		return err
	}

	data, err := json.Marshal(redisPosition{Position: pos, UpdatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("ошибка сериализации позиции: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения позиции для пользователя %d: %w", userID, err)
	}

	return nil
}

// Load загружает позицию игрока из Redis.
func (r *RedisPositionRepo) Load(ctx context.Context, userID uint64) (vec.Vec3, bool, error) {
	if userID == 0 {
		return vec.Vec3{}, false, fmt.Errorf("недействительный userID: %d", userID)
	}

	data, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return vec.Vec3{}, false, nil // Позиция не найдена
	}
	if err != nil {
		return vec.Vec3{}, false, fmt.Errorf("ошибка загрузки позиции для пользователя %d: %w", userID, err)
	}

	var rec redisPosition
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return vec.Vec3{}, false, fmt.Errorf("ошибка десериализации позиции для пользователя %d: %w", userID, err)
	}

	return rec.Position, true, nil
}

// Delete удаляет сохранённую позицию игрока.
func (r *RedisPositionRepo) Delete(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return fmt.Errorf("недействительный userID: %d", userID)
	}

	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("ошибка удаления позиции для пользователя %d: %w", userID, err)
	}

	return nil
}

// BatchSave сохраняет позиции нескольких игроков пайплайном.
func (r *RedisPositionRepo) BatchSave(ctx context.Context, positions map[uint64]vec.Vec3) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	for userID, pos := range positions {
		if err := validatePosition(userID, pos); err != nil {
			return fmt.Errorf("недействительная запись в batch: %w", err)
		}
	}

	now := time.Now()
	pipe := r.client.Pipeline()

	for userID, pos := range positions {
		data, err := json.Marshal(redisPosition{Position: pos, UpdatedAt: now})
		if err != nil {
			r.log.Warn("Не удалось сериализовать позицию для %d: %v", userID, err)
			continue
		}
		pipe.Set(ctx, r.key(userID), data, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ошибка выполнения batch: %w", err)
	}

	return nil
}

// ActiveCount возвращает количество закэшированных позиций
func (r *RedisPositionRepo) ActiveCount(ctx context.Context) (int64, error) {
	var count int64
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта позиций: %w", err)
	}

	return count, nil
}

// Close закрывает соединение с Redis.
func (r *RedisPositionRepo) Close() error {
	return r.client.Close()
}

// key строит ключ Redis для пользователя
func (r *RedisPositionRepo) key(userID uint64) string {
	return r.keyPrefix + strconv.FormatUint(userID, 10)
}
