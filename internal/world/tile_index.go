package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

// TileIndex — индекс тайл-сущностей по идентификатору с делегированием
// чанковых запросов ChunkIndex. Добавление и удаление тайла меняют
// структуру чанка, поэтому сбрасывают кэш скомпилированного пакета
// владеющего чанка — единственный сквозной эффект этого компонента.
type TileIndex struct {
	mu     sync.RWMutex
	tiles  map[uint64]*entity.Tile
	chunks *ChunkIndex

	// invalidate вызывается для ключа владеющего чанка на каждом
	// add/remove. Выставляется измерением при сборке.
	invalidate func(vec.ChunkKey)

	// changed уведомляет об изменении набора тайлов (для событий шины)
	changed func(t *entity.Tile, removed bool)
}

// NewTileIndex создаёт индекс тайлов поверх указанного ChunkIndex
func NewTileIndex(chunks *ChunkIndex) *TileIndex {
	return &TileIndex{
		tiles:  make(map[uint64]*entity.Tile),
		chunks: chunks,
	}
}

// Add добавляет тайл. Повторное добавление того же ID перезаписывает
// запись. Кэш скомпилированного пакета владеющего чанка сбрасывается.
func (ti *TileIndex) Add(t *entity.Tile) {
	ti.mu.Lock()
	ti.tiles[t.ID] = t
	ti.mu.Unlock()

	c := t.Position.ToChunkCoords()
	if chunk, ok := ti.chunks.Resident(int32(c.X), int32(c.Y)); ok {
		chunk.addTile(t)
	}

	ti.bust(t, false)
}

// Remove убирает тайл из индекса. Объект не уничтожается — жизненный
// цикл за вызывающим. Кэш владеющего чанка сбрасывается.
func (ti *TileIndex) Remove(id uint64) (*entity.Tile, bool) {
	ti.mu.Lock()
	t, ok := ti.tiles[id]
	if !ok {
		ti.mu.Unlock()
		return nil, false
	}
	delete(ti.tiles, id)
	ti.mu.Unlock()

	c := t.Position.ToChunkCoords()
	if chunk, ok := ti.chunks.Resident(int32(c.X), int32(c.Y)); ok {
		chunk.removeTile(id)
	}

	ti.bust(t, true)
	return t, true
}

// Get возвращает тайл по идентификатору
func (ti *TileIndex) Get(id uint64) (*entity.Tile, bool) {
	ti.mu.RLock()
	defer ti.mu.RUnlock()
	t, ok := ti.tiles[id]
	return t, ok
}

// ByChunk возвращает тайлы, резидентные в чанке (cx, cz).
// Нерезидентный чанк — пустой срез.
func (ti *TileIndex) ByChunk(cx, cz int32) []*entity.Tile {
	chunk, ok := ti.chunks.Resident(cx, cz)
	if !ok {
		return nil
	}
	return chunk.Tiles()
}

// Count возвращает количество тайлов в индексе
func (ti *TileIndex) Count() int {
	ti.mu.RLock()
	defer ti.mu.RUnlock()
	return len(ti.tiles)
}

// bust сбрасывает кэш владеющего чанка и уведомляет об изменении
func (ti *TileIndex) bust(t *entity.Tile, removed bool) {
	if ti.invalidate != nil {
		ti.invalidate(t.ChunkKey())
	}
	if ti.changed != nil {
		ti.changed(t, removed)
	}
}
