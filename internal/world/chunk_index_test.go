package world

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-dimension/internal/vec"
)

// countingStore считает обращения к хранилищу
type countingStore struct {
	loads     int64
	generates int64
	saved     sync.Map // ключ -> *Chunk
	loadErr   error
}

func (s *countingStore) Load(x, z int32) (*Chunk, error) {
	atomic.AddInt64(&s.loads, 1)
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if c, ok := s.saved.Load(vec.PackChunkKey(x, z)); ok {
		return c.(*Chunk), nil
	}
	return nil, nil
}

func (s *countingStore) Generate(x, z int32) (*Chunk, error) {
	atomic.AddInt64(&s.generates, 1)
	return NewChunk(vec.Vec2{X: int(x), Y: int(z)}), nil
}

func TestChunkIndex_AbsentWithoutGenerate(t *testing.T) {
	store := &countingStore{}
	ci := NewChunkIndex(store)

	chunk, ok := ci.Get(3, -2, false)
	assert.False(t, ok, "Отсутствующий чанк без генерации должен давать промах")
	assert.Nil(t, chunk)
	assert.Equal(t, 0, ci.Len(), "Промах не должен делать чанк резидентным")
}

func TestChunkIndex_GenerateAndIdentity(t *testing.T) {
	store := &countingStore{}
	ci := NewChunkIndex(store)

	first, ok := ci.Get(1, 1, true)
	require.True(t, ok, "Чанк должен сгенерироваться")
	require.NotNil(t, first)

	second, ok := ci.Get(1, 1, true)
	require.True(t, ok)
	assert.Same(t, first, second, "Повторный запрос должен вернуть тот же экземпляр")

	third, ok := ci.Resident(1, 1)
	require.True(t, ok, "Сгенерированный чанк должен быть резидентным")
	assert.Same(t, first, third)

	assert.Equal(t, int64(1), atomic.LoadInt64(&store.generates), "Генерация должна выполниться один раз")
}

func TestChunkIndex_LoadFromStore(t *testing.T) {
	store := &countingStore{}
	saved := NewChunk(vec.Vec2{X: 5, Y: 7})
	store.saved.Store(vec.PackChunkKey(5, 7), saved)

	ci := NewChunkIndex(store)

	chunk, ok := ci.Get(5, 7, false)
	require.True(t, ok, "Сохранённый чанк должен загрузиться без генерации")
	assert.Same(t, saved, chunk)
	assert.Equal(t, int64(0), atomic.LoadInt64(&store.generates))
}

func TestChunkIndex_StoreErrorTreatedAsAbsent(t *testing.T) {
	store := &countingStore{loadErr: errors.New("диск недоступен")}
	ci := NewChunkIndex(store)

	chunk, ok := ci.Get(0, 0, false)
	assert.False(t, ok, "Ошибка хранилища должна трактоваться как отсутствие")
	assert.Nil(t, chunk)
}

// TestChunkIndex_SingleFlight проверяет, что одновременные промахи по
// одному ключу дают один экземпляр и одну генерацию
func TestChunkIndex_SingleFlight(t *testing.T) {
	store := &countingStore{}
	ci := NewChunkIndex(store)

	const workers = 16
	results := make([]*Chunk, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			chunk, ok := ci.Get(9, 9, true)
			if !ok {
				t.Errorf("Воркер %d получил промах", i)
				return
			}
			results[i] = chunk
		}(i)
	}
	wg.Wait()

	require.NotNil(t, results[0])
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i], "Все воркеры должны получить один экземпляр")
	}

	assert.Equal(t, int64(1), atomic.LoadInt64(&store.generates), "Генерация должна выполниться один раз")
	assert.Equal(t, 1, ci.Len())
}
