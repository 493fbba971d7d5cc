package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

// BlockID идентифицирует тип блока
type BlockID uint16

// Базовые блоки ландшафта
const (
	BlockAir BlockID = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand
	BlockWater
	BlockDeepWater
	BlockSnow
	BlockNetherrack
	BlockEndStone
)

// ChunkSize — размер чанка в блоках по каждой оси
const ChunkSize = 16

// Chunk представляет участок мира размером 16x16 блоков.
// Помимо блоков чанк хранит множества резидентных сущностей и тайлов —
// запросы byChunk индексов делегируются сюда.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	blocks   [ChunkSize][ChunkSize]BlockID
	entities map[uint64]*entity.Entity
	tiles    map[uint64]*entity.Tile

	mu sync.RWMutex
}

// NewChunk создаёт пустой чанк с указанными координатами
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords:   coords,
		entities: make(map[uint64]*entity.Entity),
		tiles:    make(map[uint64]*entity.Tile),
	}
}

// NewChunkWithBlocks создаёт чанк с готовой матрицей блоков
// (используется генератором и хранилищем при загрузке).
func NewChunkWithBlocks(coords vec.Vec2, blocks [ChunkSize][ChunkSize]BlockID) *Chunk {
	c := NewChunk(coords)
	c.blocks = blocks
	return c
}

// Key возвращает упакованный ключ чанка
func (c *Chunk) Key() vec.ChunkKey {
	return vec.PackChunkKey(int32(c.Coords.X), int32(c.Coords.Y))
}

// GetBlock возвращает ID блока по локальным координатам
func (c *Chunk) GetBlock(local vec.Vec2) BlockID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[local.X][local.Y]
}

// SetBlock устанавливает блок по локальным координатам
func (c *Chunk) SetBlock(local vec.Vec2, id BlockID) {
	c.mu.Lock()
	c.blocks[local.X][local.Y] = id
	c.mu.Unlock()
}

// BlocksSnapshot возвращает копию матрицы блоков (для сериализации)
func (c *Chunk) BlocksSnapshot() [ChunkSize][ChunkSize]BlockID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks
}

// addEntity регистрирует сущность как резидентную в чанке
func (c *Chunk) addEntity(e *entity.Entity) {
	c.mu.Lock()
	c.entities[e.ID] = e
	c.mu.Unlock()
}

// removeEntity убирает сущность из множества резидентных
func (c *Chunk) removeEntity(id uint64) {
	c.mu.Lock()
	delete(c.entities, id)
	c.mu.Unlock()
}

// Entities возвращает срез резидентных сущностей чанка
func (c *Chunk) Entities() []*entity.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*entity.Entity, 0, len(c.entities))
	for _, e := range c.entities {
		result = append(result, e)
	}
	return result
}

// addTile регистрирует тайл как резидентный в чанке
func (c *Chunk) addTile(t *entity.Tile) {
	c.mu.Lock()
	c.tiles[t.ID] = t
	c.mu.Unlock()
}

// removeTile убирает тайл из множества резидентных
func (c *Chunk) removeTile(id uint64) {
	c.mu.Lock()
	delete(c.tiles, id)
	c.mu.Unlock()
}

// Tiles возвращает срез резидентных тайлов чанка
func (c *Chunk) Tiles() []*entity.Tile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*entity.Tile, 0, len(c.tiles))
	for _, t := range c.tiles {
		result = append(result, t)
	}
	return result
}
