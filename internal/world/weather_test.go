package world

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

func testPlayers(n int) []*entity.Player {
	players := make([]*entity.Player, n)
	for i := range players {
		players[i] = entity.NewPlayer(uint64(i+1), uuid.New(), "p", vec.Vec2{})
	}
	return players
}

// TestWeatherState_BroadcastAll проверяет рассылку снимка погоды всем игрокам
func TestWeatherState_BroadcastAll(t *testing.T) {
	players := testPlayers(3)
	w := NewWeatherState(WeatherConfig{Seed: 1}, func() []*entity.Player { return players })

	w.SetRain(5)
	w.Broadcast(nil)

	for i, p := range players {
		out := p.DrainOutbox()
		require.Len(t, out, 2, "Игрок %d должен получить пару пакетов (дождь и гроза)", i)

		rain, ok := out[0].(protocol.WeatherEventPacket)
		require.True(t, ok)
		assert.Equal(t, protocol.WeatherRain, rain.Element)
		assert.True(t, rain.Starting, "Активный дождь рассылается как начало")
		assert.Equal(t, int32(5), rain.Level, "Уровень передаётся при начале")

		thunder, ok := out[1].(protocol.WeatherEventPacket)
		require.True(t, ok)
		assert.Equal(t, protocol.WeatherThunder, thunder.Element)
		assert.False(t, thunder.Starting, "Неактивная гроза рассылается как окончание")
		assert.Equal(t, int32(0), thunder.Level)
	}
}

func TestWeatherState_BroadcastTargets(t *testing.T) {
	players := testPlayers(3)
	w := NewWeatherState(WeatherConfig{Seed: 1}, func() []*entity.Player { return players })

	w.SetRain(2)
	w.Broadcast(players[:1])

	assert.Len(t, players[0].DrainOutbox(), 2, "Целевой игрок должен получить снимок")
	assert.Empty(t, players[1].DrainOutbox(), "Нецелевые игроки не получают пакетов")
	assert.Empty(t, players[2].DrainOutbox())
}

// TestWeatherState_TickSchedule проверяет плановую смену погоды
func TestWeatherState_TickSchedule(t *testing.T) {
	players := testPlayers(1)
	cfg := WeatherConfig{MinDurationTicks: 100, MaxDurationTicks: 100, Seed: 7}
	w := NewWeatherState(cfg, func() []*entity.Player { return players })

	// До запланированного тика ничего не происходит
	w.Tick(50)
	assert.Equal(t, int32(0), w.Rain(), "До плановой смены погода ясная")
	assert.Empty(t, players[0].DrainOutbox(), "Без смены нет рассылки")

	// На плановом тике ясная погода сменяется осадками
	w.Tick(100)
	assert.Greater(t, w.Rain(), int32(0), "После смены должен идти дождь")
	assert.Len(t, players[0].DrainOutbox(), 2, "Смена погоды рассылается игрокам")

	// Следующая смена возвращает ясную погоду
	w.Tick(200)
	assert.Equal(t, int32(0), w.Rain(), "Вторая смена возвращает ясную погоду")
	assert.Equal(t, int32(0), w.Thunder())
}

func TestWeatherState_Setters(t *testing.T) {
	w := NewWeatherState(WeatherConfig{}, nil)

	var changes [][2]int32
	w.onChange = func(rain, thunder int32) { changes = append(changes, [2]int32{rain, thunder}) }

	w.SetRain(3)
	w.SetThunder(2)

	assert.Equal(t, int32(3), w.Rain())
	assert.Equal(t, int32(2), w.Thunder())
	require.Len(t, changes, 2, "Каждый сеттер должен уведомлять об изменении")
	assert.Equal(t, [2]int32{3, 0}, changes[0])
	assert.Equal(t, [2]int32{3, 2}, changes[1])
}
