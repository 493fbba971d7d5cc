package storage

import (
	"context"

	"github.com/annel0/mmo-dimension/internal/vec"
)

// PositionRepo определяет интерфейс для сохранения и загрузки позиций игроков.
// Позиции привязаны к UserID (постоянный идентификатор аккаунта), а не к EntityID,
// что позволяет восстановить позицию между сессиями. Компонента Z вектора —
// идентификатор измерения, в котором игрок находился.
type PositionRepo interface {
	// Save сохраняет позицию игрока в хранилище.
	Save(ctx context.Context, userID uint64, pos vec.Vec3) error

	// Load загружает позицию игрока.
	// Возвращает false, если позиция не найдена (первый вход).
	Load(ctx context.Context, userID uint64) (vec.Vec3, bool, error)

	// Delete удаляет сохранённую позицию игрока (для тестов или сброса).
	Delete(ctx context.Context, userID uint64) error

	// BatchSave сохраняет позиции нескольких игроков одновременно
	// (для автосохранения всех онлайн игроков).
	BatchSave(ctx context.Context, positions map[uint64]vec.Vec3) error
}
