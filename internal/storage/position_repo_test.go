package storage

import (
	"context"
	"testing"

	"github.com/annel0/mmo-dimension/internal/vec"
)

// TestMemoryPositionRepo тестирует in-memory репозиторий позиций
func TestMemoryPositionRepo(t *testing.T) {
	repo := NewMemoryPositionRepo()
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		userID := uint64(123)
		expectedPos := vec.Vec3{X: 10, Y: 20, Z: 1}

		// Сохраняем позицию
		err := repo.Save(ctx, userID, expectedPos)
		if err != nil {
			t.Fatalf("Ошибка сохранения позиции: %v", err)
		}

		// Загружаем позицию
		actualPos, found, err := repo.Load(ctx, userID)
		if err != nil {
			t.Fatalf("Ошибка загрузки позиции: %v", err)
		}

		if !found {
			t.Fatal("Позиция не найдена")
		}

		if actualPos != expectedPos {
			t.Errorf("Неверная позиция: ожидалась %+v, получена %+v", expectedPos, actualPos)
		}
	})

	t.Run("Load Non-Existent User", func(t *testing.T) {
		userID := uint64(999)

		pos, found, err := repo.Load(ctx, userID)
		if err != nil {
			t.Fatalf("Ошибка при загрузке несуществующего пользователя: %v", err)
		}

		if found {
			t.Error("Позиция найдена для несуществующего пользователя")
		}

		if pos != (vec.Vec3{}) {
			t.Errorf("Ожидалась пустая позиция, получена: %+v", pos)
		}
	})

	t.Run("Update Position", func(t *testing.T) {
		userID := uint64(456)
		firstPos := vec.Vec3{X: 1, Y: 2, Z: 0}
		secondPos := vec.Vec3{X: 3, Y: 4, Z: 2}

		if err := repo.Save(ctx, userID, firstPos); err != nil {
			t.Fatalf("Ошибка сохранения первой позиции: %v", err)
		}

		// Обновляем позицию (игрок сменил измерение)
		if err := repo.Save(ctx, userID, secondPos); err != nil {
			t.Fatalf("Ошибка обновления позиции: %v", err)
		}

		actualPos, found, err := repo.Load(ctx, userID)
		if err != nil {
			t.Fatalf("Ошибка загрузки обновленной позиции: %v", err)
		}

		if !found {
			t.Fatal("Обновленная позиция не найдена")
		}

		if actualPos != secondPos {
			t.Errorf("Неверная обновленная позиция: ожидалась %+v, получена %+v", secondPos, actualPos)
		}
	})

	t.Run("Delete Position", func(t *testing.T) {
		userID := uint64(789)
		pos := vec.Vec3{X: 5, Y: 6, Z: 1}

		if err := repo.Save(ctx, userID, pos); err != nil {
			t.Fatalf("Ошибка сохранения позиции: %v", err)
		}

		if err := repo.Delete(ctx, userID); err != nil {
			t.Fatalf("Ошибка удаления позиции: %v", err)
		}

		_, found, err := repo.Load(ctx, userID)
		if err != nil {
			t.Fatalf("Ошибка загрузки после удаления: %v", err)
		}

		if found {
			t.Error("Позиция найдена после удаления")
		}

		// Удаление несуществующей позиции — ошибка
		if err := repo.Delete(ctx, userID); err == nil {
			t.Error("Ожидалась ошибка при повторном удалении")
		}
	})

	t.Run("BatchSave", func(t *testing.T) {
		positions := map[uint64]vec.Vec3{
			100: {X: 10, Y: 11, Z: 0},
			200: {X: 20, Y: 21, Z: 1},
			300: {X: 30, Y: 31, Z: 2},
		}

		if err := repo.BatchSave(ctx, positions); err != nil {
			t.Fatalf("Ошибка batch-сохранения: %v", err)
		}

		for userID, expected := range positions {
			actual, found, err := repo.Load(ctx, userID)
			if err != nil {
				t.Fatalf("Ошибка загрузки позиции %d: %v", userID, err)
			}
			if !found {
				t.Fatalf("Позиция %d не найдена после batch", userID)
			}
			if actual != expected {
				t.Errorf("Позиция %d: ожидалась %+v, получена %+v", userID, expected, actual)
			}
		}
	})

	t.Run("Validation", func(t *testing.T) {
		// Нулевой userID недопустим
		if err := repo.Save(ctx, 0, vec.Vec3{}); err == nil {
			t.Error("Ожидалась ошибка для userID=0")
		}

		// Отрицательный идентификатор измерения недопустим
		if err := repo.Save(ctx, 1, vec.Vec3{Z: -1}); err == nil {
			t.Error("Ожидалась ошибка для отрицательного измерения")
		}

		// Недействительная запись в batch отклоняет весь batch
		before := repo.Count()
		err := repo.BatchSave(ctx, map[uint64]vec.Vec3{
			500: {X: 1, Y: 1, Z: 0},
			0:   {X: 2, Y: 2, Z: 0},
		})
		if err == nil {
			t.Error("Ожидалась ошибка для batch с недействительной записью")
		}
		if repo.Count() != before {
			t.Error("Недействительный batch не должен менять хранилище")
		}
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		if err := repo.Save(cancelled, 1, vec.Vec3{X: 1}); err == nil {
			t.Error("Ожидалась ошибка отменённого контекста")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo.Clear()
		if repo.Count() != 0 {
			t.Errorf("После Clear ожидалось 0 позиций, получено %d", repo.Count())
		}
	})
}
