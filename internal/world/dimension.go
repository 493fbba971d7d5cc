package world

import (
	"context"
	"errors"
	"sync"

	"github.com/annel0/mmo-dimension/internal/eventbus"
	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

// ErrChunkUnavailable — чанк не удалось ни загрузить, ни сгенерировать
var ErrChunkUnavailable = errors.New("world: чанк недоступен")

// ChunkEncoder сериализует чанк в блоб для ChunkDataPacket.
// Конкретный кодек живёт у транспорта; измерение только кэширует результат.
type ChunkEncoder interface {
	EncodeChunk(c *Chunk) ([]byte, error)
}

// Dimension — контейнер состояния одного измерения: индексы чанков,
// сущностей и тайлов, очередь рассылки и погода, связанные сквозными
// эффектами (инвалидация кэша, sleep-check, события на шину).
//
// Экземпляр получает идентификатор только при прикреплении к World;
// до этого он полностью функционален, но «ничей».
type Dimension struct {
	mu       sync.Mutex
	id       int32
	attached bool

	typ DimensionType

	// distanceMultiplier по умолчанию берётся из вида, но может быть
	// переопределён для конкретного экземпляра
	distanceMultiplier float64

	Chunks   *ChunkIndex
	Entities *EntityIndex
	Tiles    *TileIndex
	Queue    *PacketQueue
	Weather  *WeatherState

	bus eventbus.EventBus
	log *logging.Logger
}

// NewDimension собирает измерение вида typ с зависимостями deps и
// связывает компоненты хуками:
//   - изменение набора тайлов сбрасывает кэш владеющего чанка, ставит
//     TileUpdatePacket в его батч и публикует событие на шину;
//   - удаление игрока поднимает sleep-check и публикует событие ухода;
//   - смена погоды публикует событие на шину.
func NewDimension(typ DimensionType, deps DimensionDeps) *Dimension {
	chunks := NewChunkIndex(deps.Store)
	entities := NewEntityIndex(chunks)
	tiles := NewTileIndex(chunks)
	queue := NewPacketQueue()

	d := &Dimension{
		typ:                typ,
		distanceMultiplier: typ.DistanceMultiplier,
		Chunks:             chunks,
		Entities:           entities,
		Tiles:              tiles,
		Queue:              queue,
		bus:                deps.Bus,
		log:                logging.GetWorldLogger(),
	}

	d.Weather = NewWeatherState(deps.Weather, entities.Players)
	d.Weather.onChange = d.weatherChanged

	tiles.invalidate = queue.InvalidateCompiled
	tiles.changed = d.tileChanged
	entities.playerRemoved = d.playerRemoved

	return d
}

// ID возвращает идентификатор экземпляра (0 до прикрепления к World)
func (d *Dimension) ID() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

// Type возвращает вид измерения
func (d *Dimension) Type() DimensionType { return d.typ }

// DistanceMultiplier возвращает коэффициент межмировых координат
// (8.0 для Nether: один блок соответствует восьми в Overworld)
func (d *Dimension) DistanceMultiplier() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.distanceMultiplier
}

// SetDistanceMultiplier переопределяет коэффициент для этого экземпляра
func (d *Dimension) SetDistanceMultiplier(m float64) {
	d.mu.Lock()
	d.distanceMultiplier = m
	d.mu.Unlock()
}

// attach помечает измерение прикреплённым под идентификатором id.
// Одноразовая операция: повторная попытка — false.
func (d *Dimension) attach(id int32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attached {
		return false
	}
	d.id = id
	d.attached = true
	return true
}

// DoTick продвигает измерение на один игровой тик
func (d *Dimension) DoTick(tick int64) {
	d.Weather.Tick(tick)
}

// SetBlock меняет блок в мировой позиции pos. Чанк должен быть
// резидентным — запись в незагруженный чанк игнорируется (false).
// Кэш скомпилированного пакета чанка сбрасывается, обновление блока
// встаёт в батч рассылки чанка.
func (d *Dimension) SetBlock(pos vec.Vec2, id BlockID) bool {
	c := pos.ToChunkCoords()
	cx, cz := int32(c.X), int32(c.Y)

	chunk, ok := d.Chunks.Resident(cx, cz)
	if !ok {
		return false
	}

	chunk.SetBlock(pos.LocalInChunk(), id)

	d.Queue.InvalidateCompiled(chunk.Key())
	d.Queue.Enqueue(cx, cz, protocol.BlockUpdatePacket{X: pos.X, Z: pos.Y, Block: uint16(id)})
	return true
}

// CompiledChunkPacket возвращает скомпилированный пакет чанка, кодируя
// его при промахе кэша. Отсутствующий чанк загружается и при
// необходимости генерируется.
func (d *Dimension) CompiledChunkPacket(x, z int32, enc ChunkEncoder) (*protocol.ChunkDataPacket, error) {
	key := vec.PackChunkKey(x, z)

	if pkt, ok := d.Queue.Compiled(key); ok {
		return pkt, nil
	}

	chunk, ok := d.Chunks.Get(x, z, true)
	if !ok {
		return nil, ErrChunkUnavailable
	}

	payload, err := enc.EncodeChunk(chunk)
	if err != nil {
		return nil, err
	}

	pkt := &protocol.ChunkDataPacket{ChunkX: x, ChunkZ: z, Payload: payload}
	d.Queue.SetCompiled(key, pkt)
	return pkt, nil
}

// tileChanged — хук TileIndex: рассылка и событие об изменении тайла
func (d *Dimension) tileChanged(t *entity.Tile, removed bool) {
	c := t.Position.ToChunkCoords()
	cx, cz := int32(c.X), int32(c.Y)

	d.Queue.Enqueue(cx, cz, protocol.TileUpdatePacket{
		TileID:  t.ID,
		X:       t.Position.X,
		Z:       t.Position.Y,
		Removed: removed,
	})

	d.publish(eventbus.EventTileChanged, eventbus.TileChangedPayload{
		DimensionID: d.ID(),
		TileID:      t.ID,
		ChunkX:      cx,
		ChunkZ:      cz,
		Removed:     removed,
	})
}

// playerRemoved — хук EntityIndex: событие ухода плюс sleep-check.
// Уход бодрствующего игрока мог оставить в измерении только спящих —
// тогда ночь пропускается.
func (d *Dimension) playerRemoved(p *entity.Player) {
	d.publish(eventbus.EventPlayerLeft, eventbus.PlayerLeftPayload{
		DimensionID: d.ID(),
		EntityID:    p.ID,
		PlayerUUID:  p.UUID.String(),
		X:           p.Position.X,
		Z:           p.Position.Y,
	})
	d.checkSleep()
}

// checkSleep публикует пропуск ночи, если все оставшиеся игроки спят.
// Пустое измерение ночь не пропускает.
func (d *Dimension) checkSleep() {
	players := d.Entities.Players()
	if len(players) == 0 {
		return
	}
	for _, p := range players {
		if !p.Sleeping {
			return
		}
	}

	d.log.Info("Все игроки измерения %d спят, пропускаем ночь", d.ID())
	d.publish(eventbus.EventNightSkip, eventbus.NightSkipPayload{
		DimensionID: d.ID(),
		Sleeping:    len(players),
	})
}

// weatherChanged — хук WeatherState
func (d *Dimension) weatherChanged(rain, thunder int32) {
	d.publish(eventbus.EventWeatherChanged, eventbus.WeatherChangedPayload{
		DimensionID: d.ID(),
		Rain:        rain,
		Thunder:     thunder,
	})
}

// publish отправляет событие на шину измерения (если она подключена)
func (d *Dimension) publish(eventType string, payload interface{}) {
	if d.bus == nil {
		return
	}
	if err := eventbus.PublishJSON(context.Background(), d.bus, "dimension", eventType, payload); err != nil {
		d.log.Warn("Не удалось опубликовать событие %s: %v", eventType, err)
	}
}
