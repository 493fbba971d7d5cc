package entity

import (
	"github.com/annel0/mmo-dimension/internal/vec"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeNPC
	EntityTypeMonster
	EntityTypeItem
	EntityTypeProjectile
)

// Entity представляет базовую сущность измерения.
// Сущность принадлежит ровно одному измерению; перенос между измерениями —
// это Remove из одного индекса и Add в другой, жизненный цикл объекта
// остаётся за вызывающим.
type Entity struct {
	ID       uint64                 // Уникальный в пределах процесса идентификатор
	Type     EntityType             // Тип сущности
	Position vec.Vec2               // Текущая позиция в мире (в координатах блоков)
	Payload  map[string]interface{} // Дополнительные данные сущности
	Active   bool                   // Активна ли сущность
}

// NewEntity создаёт новую сущность
func NewEntity(id uint64, entityType EntityType, position vec.Vec2) *Entity {
	return &Entity{
		ID:       id,
		Type:     entityType,
		Position: position,
		Payload:  make(map[string]interface{}),
		Active:   true,
	}
}

// ChunkKey возвращает ключ чанка, в котором находится сущность
func (e *Entity) ChunkKey() vec.ChunkKey {
	return e.Position.ChunkKey()
}

// IsPlayer сообщает, является ли сущность игроком
func (e *Entity) IsPlayer() bool {
	return e.Type == EntityTypePlayer
}
