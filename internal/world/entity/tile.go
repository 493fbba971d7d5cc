package entity

import (
	"github.com/annel0/mmo-dimension/internal/vec"
)

// TileKind различает виды тайл-сущностей
type TileKind uint16

const (
	TileKindChest TileKind = iota
	TileKindFurnace
	TileKindSign
	TileKindSpawner
)

// Tile представляет тайл-сущность — блок с дополнительным состоянием
// (контейнер, табличка и т.п.). Принадлежит ровно одному измерению и
// неявно чанку, содержащему её позицию.
type Tile struct {
	ID       uint64                 // Уникальный в пределах процесса идентификатор
	Kind     TileKind               // Вид тайл-сущности
	Position vec.Vec2               // Позиция блока в мире
	Payload  map[string]interface{} // Состояние (инвентарь, текст…)
}

// NewTile создаёт тайл-сущность
func NewTile(id uint64, kind TileKind, position vec.Vec2) *Tile {
	return &Tile{
		ID:       id,
		Kind:     kind,
		Position: position,
		Payload:  make(map[string]interface{}),
	}
}

// ChunkKey возвращает ключ чанка, которому принадлежит тайл (x>>4, z>>4)
func (t *Tile) ChunkKey() vec.ChunkKey {
	return t.Position.ChunkKey()
}
