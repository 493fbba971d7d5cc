package world

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-dimension/internal/eventbus"
	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

func newTestDimension(t *testing.T, bus eventbus.EventBus) *Dimension {
	t.Helper()
	typ, err := DimensionTypeByID(DimensionOverworld)
	require.NoError(t, err)
	return NewDimension(typ, DimensionDeps{Store: &countingStore{}, Bus: bus})
}

func TestWorld_AttachOnce(t *testing.T) {
	w := NewWorld()
	d := newTestDimension(t, nil)

	id, ok := w.Attach(d)
	require.True(t, ok, "Первое прикрепление должно удаться")
	assert.Equal(t, int32(0), id, "Первый идентификатор экземпляра — 0")
	assert.Equal(t, id, d.ID())

	got, ok := w.Dimension(id)
	require.True(t, ok)
	assert.Same(t, d, got)

	// Повторное прикрепление того же экземпляра отклоняется
	_, ok = w.Attach(d)
	assert.False(t, ok, "Повторное прикрепление должно отклоняться")
	assert.Len(t, w.Dimensions(), 1, "Состояние мира не должно измениться")

	// И к другому миру — тоже
	other := NewWorld()
	_, ok = other.Attach(d)
	assert.False(t, ok, "Прикрепление к другому миру тоже отклоняется")
}

func TestWorld_AttachAssignsSequentialIDs(t *testing.T) {
	w := NewWorld()

	first, ok := w.Attach(newTestDimension(t, nil))
	require.True(t, ok)
	second, ok := w.Attach(newTestDimension(t, nil))
	require.True(t, ok)

	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(1), second)
	assert.Len(t, w.Dimensions(), 2)
}

func TestDimension_SetBlock(t *testing.T) {
	d := newTestDimension(t, nil)

	// Пишем в незагруженный чанк — игнорируется
	ok := d.SetBlock(vec.Vec2{X: 100, Y: 100}, BlockStone)
	assert.False(t, ok, "Запись в незагруженный чанк должна игнорироваться")

	// Загружаем чанк (0,0) и заполняем кэш
	chunk, ok := d.Chunks.Get(0, 0, true)
	require.True(t, ok)
	d.Queue.SetCompiled(chunk.Key(), &protocol.ChunkDataPacket{})

	pos := vec.Vec2{X: 3, Y: 7}
	ok = d.SetBlock(pos, BlockStone)
	require.True(t, ok)

	assert.Equal(t, BlockStone, chunk.GetBlock(pos.LocalInChunk()), "Блок должен записаться в чанк")

	_, cached := d.Queue.Compiled(chunk.Key())
	assert.False(t, cached, "Мутация блока должна сбросить кэш чанка")

	batches := d.Queue.DrainAll()
	batch := batches[chunk.Key()]
	require.Len(t, batch, 1, "Обновление блока должно встать в батч чанка")
	upd, isUpd := batch[0].(protocol.BlockUpdatePacket)
	require.True(t, isUpd)
	assert.Equal(t, pos.X, upd.X)
	assert.Equal(t, uint16(BlockStone), upd.Block)
}

func TestDimension_TileMutationEffects(t *testing.T) {
	d := newTestDimension(t, nil)

	chunk, ok := d.Chunks.Get(0, 0, true)
	require.True(t, ok)
	d.Queue.SetCompiled(chunk.Key(), &protocol.ChunkDataPacket{})

	tile := entity.NewTile(9, entity.TileKindChest, vec.Vec2{X: 4, Y: 4})
	d.Tiles.Add(tile)

	_, cached := d.Queue.Compiled(chunk.Key())
	assert.False(t, cached, "Добавление тайла должно сбросить кэш владеющего чанка")

	batch := d.Queue.DrainAll()[chunk.Key()]
	require.Len(t, batch, 1)
	upd, isUpd := batch[0].(protocol.TileUpdatePacket)
	require.True(t, isUpd)
	assert.Equal(t, uint64(9), upd.TileID)
	assert.False(t, upd.Removed)
}

type encoderFunc func(c *Chunk) ([]byte, error)

func (f encoderFunc) EncodeChunk(c *Chunk) ([]byte, error) { return f(c) }

func TestDimension_CompiledChunkPacket(t *testing.T) {
	d := newTestDimension(t, nil)

	calls := 0
	enc := encoderFunc(func(c *Chunk) ([]byte, error) {
		calls++
		return []byte{42}, nil
	})

	pkt, err := d.CompiledChunkPacket(0, 0, enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{42}, pkt.Payload)
	assert.Equal(t, 1, calls)

	// Повторный запрос обслуживается кэшем
	again, err := d.CompiledChunkPacket(0, 0, enc)
	require.NoError(t, err)
	assert.Same(t, pkt, again, "Повторный запрос должен вернуть кэшированный пакет")
	assert.Equal(t, 1, calls, "Кодек не должен вызываться при попадании в кэш")

	failing := encoderFunc(func(c *Chunk) ([]byte, error) {
		return nil, errors.New("кодек сломан")
	})
	_, err = d.CompiledChunkPacket(1, 1, failing)
	assert.Error(t, err, "Ошибка кодека должна распространяться")
}

// TestDimension_SleepCheck проверяет публикацию пропуска ночи, когда уход
// игрока оставляет в измерении только спящих
func TestDimension_SleepCheck(t *testing.T) {
	bus := eventbus.NewMemoryBus(64)
	d := newTestDimension(t, bus)

	skips := make(chan eventbus.NightSkipPayload, 1)
	_, err := bus.Subscribe(context.Background(),
		eventbus.Filter{Types: []string{eventbus.EventNightSkip}},
		func(ctx context.Context, ev *eventbus.Envelope) {
			var p eventbus.NightSkipPayload
			if json.Unmarshal(ev.Payload, &p) == nil {
				skips <- p
			}
		})
	require.NoError(t, err)

	sleeper := entity.NewPlayer(1, uuid.New(), "Sleeper", vec.Vec2{})
	sleeper.Sleeping = true
	awake := entity.NewPlayer(2, uuid.New(), "Awake", vec.Vec2{})

	d.Entities.AddPlayer(sleeper)
	d.Entities.AddPlayer(awake)

	// Уход бодрствующего игрока оставляет только спящих
	_, ok := d.Entities.Remove(2)
	require.True(t, ok)

	select {
	case p := <-skips:
		assert.Equal(t, 1, p.Sleeping, "В событии должно быть число спящих")
	case <-time.After(2 * time.Second):
		t.Fatal("Событие пропуска ночи не опубликовано")
	}

	// Уход последнего игрока не должен публиковать пропуск ночи
	_, ok = d.Entities.Remove(1)
	require.True(t, ok)

	select {
	case <-skips:
		t.Fatal("Пустое измерение не должно пропускать ночь")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestDimension_PlayerLeftCarriesPosition проверяет, что событие ухода
// несёт последнюю позицию игрока (по ней сохраняется его место выхода)
func TestDimension_PlayerLeftCarriesPosition(t *testing.T) {
	bus := eventbus.NewMemoryBus(64)
	d := newTestDimension(t, bus)

	left := make(chan eventbus.PlayerLeftPayload, 1)
	_, err := bus.Subscribe(context.Background(),
		eventbus.Filter{Types: []string{eventbus.EventPlayerLeft}},
		func(ctx context.Context, ev *eventbus.Envelope) {
			var p eventbus.PlayerLeftPayload
			if json.Unmarshal(ev.Payload, &p) == nil {
				left <- p
			}
		})
	require.NoError(t, err)

	p := entity.NewPlayer(5, uuid.New(), "Wanderer", vec.Vec2{X: 33, Y: -7})
	d.Entities.AddPlayer(p)

	_, ok := d.Entities.Remove(5)
	require.True(t, ok)

	select {
	case got := <-left:
		assert.Equal(t, uint64(5), got.EntityID)
		assert.Equal(t, 33, got.X, "Событие должно нести последнюю позицию")
		assert.Equal(t, -7, got.Z)
	case <-time.After(2 * time.Second):
		t.Fatal("Событие ухода игрока не опубликовано")
	}
}

func TestDimension_DistanceMultiplier(t *testing.T) {
	nether, err := DimensionTypeByID(DimensionNether)
	require.NoError(t, err)

	d := NewDimension(nether, DimensionDeps{Store: &countingStore{}})
	assert.Equal(t, 8.0, d.DistanceMultiplier(), "Nether должен иметь множитель 8")

	d.SetDistanceMultiplier(4.0)
	assert.Equal(t, 4.0, d.DistanceMultiplier(), "Множитель экземпляра можно переопределить")
	assert.Equal(t, 8.0, d.Type().DistanceMultiplier, "Вид измерения не мутируется")
}
