package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/annel0/mmo-dimension/internal/vec"
)

// MemoryPositionRepo реализует PositionRepo в памяти.
// Используется как fallback, когда MariaDB недоступна,
// или для CI/локальной разработки без БД.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryPositionRepo struct {
	mu   sync.RWMutex
	data map[uint64]vec.Vec3 // userID -> позиция
}

// NewMemoryPositionRepo создаёт новый репозиторий позиций в памяти
func NewMemoryPositionRepo() *MemoryPositionRepo {
	return &MemoryPositionRepo{
		data: make(map[uint64]vec.Vec3),
	}
}

// Save сохраняет позицию игрока в памяти.
func (r *MemoryPositionRepo) Save(ctx context.Context, userID uint64, pos vec.Vec3) error {
	if err := validatePosition(userID, pos); err != nil {
		return err
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[userID] = pos
	return nil
}

// Load загружает позицию игрока из памяти.
func (r *MemoryPositionRepo) Load(ctx context.Context, userID uint64) (vec.Vec3, bool, error) {
	if userID == 0 {
		return vec.Vec3{}, false, fmt.Errorf("недействительный userID: %d", userID)
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return vec.Vec3{}, false, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, exists := r.data[userID]
	return pos, exists, nil
}

// Delete удаляет сохранённую позицию игрока из памяти.
func (r *MemoryPositionRepo) Delete(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return fmt.Errorf("недействительный userID: %d", userID)
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[userID]; !exists {
		return fmt.Errorf("позиция для пользователя %d не найдена", userID)
	}

	delete(r.data, userID)
	return nil
}

// BatchSave сохраняет позиции нескольких игроков в памяти.
func (r *MemoryPositionRepo) BatchSave(ctx context.Context, positions map[uint64]vec.Vec3) error {
	if len(positions) == 0 {
		return nil // Нечего сохранять
	}

	// Проверяем контекст на отмену
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Валидация всех записей перед сохранением
	for userID, pos := range positions {
		if err := validatePosition(userID, pos); err != nil {
			return fmt.Errorf("недействительная запись в batch: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, pos := range positions {
		r.data[userID] = pos
	}

	return nil
}

// GetAllPositions возвращает копию всех сохранённых позиций (для отладки).
// Этот метод не входит в интерфейс PositionRepo, но полезен для тестирования.
func (r *MemoryPositionRepo) GetAllPositions() map[uint64]vec.Vec3 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uint64]vec.Vec3, len(r.data))
	for userID, pos := range r.data {
		result[userID] = pos
	}

	return result
}

// Count возвращает количество сохранённых позиций (для отладки).
func (r *MemoryPositionRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Clear очищает все сохранённые позиции (для тестов).
func (r *MemoryPositionRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[uint64]vec.Vec3)
}

// validatePosition проверяет корректность записи позиции.
// Z — идентификатор измерения, отрицательным быть не может.
func validatePosition(userID uint64, pos vec.Vec3) error {
	if userID == 0 {
		return fmt.Errorf("недействительный userID: %d", userID)
	}
	if pos.Z < 0 {
		return fmt.Errorf("недействительный идентификатор измерения: %d", pos.Z)
	}
	return nil
}
