package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

// EntityIndex — индекс сущностей измерения по идентификатору плюс
// производный индекс игроков. Инвариант "игрок присутствует в индексе
// игроков ⇔ он присутствует в общем индексе с типом Player"
// обеспечивается структурно: обе карты обновляются одной операцией,
// независимых точек записи нет.
type EntityIndex struct {
	mu       sync.RWMutex
	entities map[uint64]*entity.Entity
	players  map[uint64]*entity.Player
	chunks   *ChunkIndex

	// playerRemoved вызывается после удаления игрока (sleep-check
	// у родительского измерения). Выставляется измерением при сборке.
	playerRemoved func(*entity.Player)
}

// NewEntityIndex создаёт индекс, делегирующий чанковые запросы указанному ChunkIndex
func NewEntityIndex(chunks *ChunkIndex) *EntityIndex {
	return &EntityIndex{
		entities: make(map[uint64]*entity.Entity),
		players:  make(map[uint64]*entity.Player),
		chunks:   chunks,
	}
}

// Add добавляет сущность в индекс. Повторное добавление того же ID
// перезаписывает запись, дубликатов не возникает. Сущность-игрок этим
// путём не принимается (false): игроков добавляет только AddPlayer,
// иначе запись появилась бы в общем индексе мимо индекса игроков.
func (ei *EntityIndex) Add(e *entity.Entity) bool {
	if e.IsPlayer() {
		return false
	}

	ei.mu.Lock()
	ei.entities[e.ID] = e
	ei.mu.Unlock()

	ei.attachToChunk(e)
	return true
}

// AddPlayer добавляет игрока одной составной операцией: запись появляется
// и в общем индексе, и в индексе игроков.
func (ei *EntityIndex) AddPlayer(p *entity.Player) {
	ei.mu.Lock()
	ei.entities[p.ID] = &p.Entity
	ei.players[p.ID] = p
	ei.mu.Unlock()

	ei.attachToChunk(&p.Entity)
}

// Remove убирает сущность из индекса. Сам объект не уничтожается:
// удаление используется и при переносе сущности в другое измерение.
// Если сущность — игрок, запись убирается из обеих карт, после чего
// поднимается sleep-check.
func (ei *EntityIndex) Remove(id uint64) (*entity.Entity, bool) {
	ei.mu.Lock()
	e, ok := ei.entities[id]
	if !ok {
		ei.mu.Unlock()
		return nil, false
	}
	delete(ei.entities, id)
	p, wasPlayer := ei.players[id]
	if wasPlayer {
		delete(ei.players, id)
	}
	ei.mu.Unlock()

	ei.detachFromChunk(e)

	if wasPlayer && ei.playerRemoved != nil {
		ei.playerRemoved(p)
	}
	return e, true
}

// Get возвращает сущность по идентификатору
func (ei *EntityIndex) Get(id uint64) (*entity.Entity, bool) {
	ei.mu.RLock()
	defer ei.mu.RUnlock()
	e, ok := ei.entities[id]
	return e, ok
}

// GetPlayer возвращает игрока по идентификатору
func (ei *EntityIndex) GetPlayer(id uint64) (*entity.Player, bool) {
	ei.mu.RLock()
	defer ei.mu.RUnlock()
	p, ok := ei.players[id]
	return p, ok
}

// ByChunk возвращает сущности, резидентные в чанке (cx, cz).
// Запрос делегируется самому чанку; нерезидентный чанк — пустой срез.
func (ei *EntityIndex) ByChunk(cx, cz int32) []*entity.Entity {
	chunk, ok := ei.chunks.Resident(cx, cz)
	if !ok {
		return nil
	}
	return chunk.Entities()
}

// Players возвращает срез всех игроков измерения
func (ei *EntityIndex) Players() []*entity.Player {
	ei.mu.RLock()
	defer ei.mu.RUnlock()

	result := make([]*entity.Player, 0, len(ei.players))
	for _, p := range ei.players {
		result = append(result, p)
	}
	return result
}

// ChunkPlayers возвращает игроков, чей набор наблюдаемых чанков включает
// (cx, cz). Всегда срез (возможно пустой), никогда nil.
func (ei *EntityIndex) ChunkPlayers(cx, cz int32) []*entity.Player {
	key := vec.PackChunkKey(cx, cz)

	ei.mu.RLock()
	defer ei.mu.RUnlock()

	result := make([]*entity.Player, 0)
	for _, p := range ei.players {
		if p.Watches(key) {
			result = append(result, p)
		}
	}
	return result
}

// Count возвращает количество сущностей в индексе
func (ei *EntityIndex) Count() int {
	ei.mu.RLock()
	defer ei.mu.RUnlock()
	return len(ei.entities)
}

// PlayerCount возвращает количество игроков в индексе
func (ei *EntityIndex) PlayerCount() int {
	ei.mu.RLock()
	defer ei.mu.RUnlock()
	return len(ei.players)
}

// attachToChunk регистрирует сущность в её резидентном чанке (если загружен)
func (ei *EntityIndex) attachToChunk(e *entity.Entity) {
	c := e.Position.ToChunkCoords()
	if chunk, ok := ei.chunks.Resident(int32(c.X), int32(c.Y)); ok {
		chunk.addEntity(e)
	}
}

// detachFromChunk убирает сущность из её резидентного чанка
func (ei *EntityIndex) detachFromChunk(e *entity.Entity) {
	c := e.Position.ToChunkCoords()
	if chunk, ok := ei.chunks.Resident(int32(c.X), int32(c.Y)); ok {
		chunk.removeEntity(e.ID)
	}
}
