package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий, публикуемых измерениями.
const (
	EventPlayerLeft     = "PlayerLeft"     // Игрок покинул измерение (триггер sleep-check)
	EventNightSkip      = "NightSkip"      // Все оставшиеся игроки спят
	EventWeatherChanged = "WeatherChanged" // Смена интенсивности дождя/грозы
	EventTileChanged    = "TileChanged"    // Добавление/удаление тайл-сущности
)

// PlayerLeftPayload — данные события EventPlayerLeft.
// X/Z — последняя мировая позиция игрока: по ней репозиторий позиций
// восстанавливает игрока при следующем входе.
type PlayerLeftPayload struct {
	DimensionID int32  `json:"dimension_id"`
	EntityID    uint64 `json:"entity_id"`
	PlayerUUID  string `json:"player_uuid"`
	X           int    `json:"x"`
	Z           int    `json:"z"`
}

// NightSkipPayload — данные события EventNightSkip.
type NightSkipPayload struct {
	DimensionID int32 `json:"dimension_id"`
	Sleeping    int   `json:"sleeping"` // Сколько игроков спит
}

// WeatherChangedPayload — данные события EventWeatherChanged.
type WeatherChangedPayload struct {
	DimensionID int32 `json:"dimension_id"`
	Rain        int32 `json:"rain"`
	Thunder     int32 `json:"thunder"`
}

// TileChangedPayload — данные события EventTileChanged.
type TileChangedPayload struct {
	DimensionID int32  `json:"dimension_id"`
	TileID      uint64 `json:"tile_id"`
	ChunkX      int32  `json:"chunk_x"`
	ChunkZ      int32  `json:"chunk_z"`
	Removed     bool   `json:"removed"`
}

// PublishJSON сериализует payload и публикует событие в шину.
// Ошибки публикации не фатальны для игрового цикла — вызывающий решает,
// логировать их или игнорировать.
func PublishJSON(ctx context.Context, bus EventBus, source, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	return bus.Publish(ctx, &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Payload:   data,
	})
}
