package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world"
)

func overworldGenerator(t *testing.T, seed int64) *world.WorldGenerator {
	t.Helper()
	typ, err := world.DimensionTypeByID(world.DimensionOverworld)
	require.NoError(t, err)
	return world.NewWorldGenerator(seed, typ)
}

func TestMemoryChunkStore(t *testing.T) {
	store := NewMemoryChunkStore(overworldGenerator(t, 1))

	// Несохранённый чанк — (nil, nil)
	chunk, err := store.Load(0, 0)
	require.NoError(t, err)
	assert.Nil(t, chunk, "Несохранённый чанк должен отсутствовать без ошибки")

	generated, err := store.Generate(0, 0)
	require.NoError(t, err)
	require.NotNil(t, generated)

	loaded, err := store.Load(0, 0)
	require.NoError(t, err)
	assert.Same(t, generated, loaded, "Сгенерированный чанк должен запомниться")
	assert.Equal(t, 1, store.Count())
}

func TestBadgerChunkStore_Roundtrip(t *testing.T) {
	store, err := NewBadgerChunkStore(t.TempDir(), overworldGenerator(t, 42))
	require.NoError(t, err)
	defer store.Close()

	// Несохранённый чанк — (nil, nil)
	chunk, err := store.Load(3, -4)
	require.NoError(t, err)
	assert.Nil(t, chunk)

	generated, err := store.Generate(3, -4)
	require.NoError(t, err)
	require.NotNil(t, generated)

	// Генерация сразу сохраняет чанк
	loaded, err := store.Load(3, -4)
	require.NoError(t, err)
	require.NotNil(t, loaded, "Сгенерированный чанк должен был сохраниться")

	assert.Equal(t, generated.Coords, loaded.Coords)
	assert.Equal(t, generated.BlocksSnapshot(), loaded.BlocksSnapshot(),
		"Блоки должны пережить сериализацию")
}

func TestBadgerChunkStore_SaveMutation(t *testing.T) {
	store, err := NewBadgerChunkStore(t.TempDir(), overworldGenerator(t, 7))
	require.NoError(t, err)
	defer store.Close()

	chunk, err := store.Generate(0, 0)
	require.NoError(t, err)

	pos := vec.Vec2{X: 5, Y: 5}
	chunk.SetBlock(pos, world.BlockStone)
	require.NoError(t, store.Save(chunk))

	loaded, err := store.Load(0, 0)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, world.BlockStone, loaded.GetBlock(pos), "Мутация должна сохраниться")
}

func TestBadgerChunkStore_ClosedNotReady(t *testing.T) {
	store, err := NewBadgerChunkStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Load(0, 0)
	assert.Error(t, err, "Закрытое хранилище должно отклонять запросы")

	assert.NoError(t, store.Close(), "Повторное закрытие — no-op")
}
