package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(16)

	received := make(chan *Envelope, 1)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		received <- ev
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	err = PublishJSON(context.Background(), bus, "dimension:0", EventWeatherChanged,
		WeatherChangedPayload{DimensionID: 0, Rain: 3})
	require.NoError(t, err)

	select {
	case ev := <-received:
		assert.Equal(t, EventWeatherChanged, ev.EventType)
		assert.Equal(t, "dimension:0", ev.Source)
		assert.NotEmpty(t, ev.ID, "Событие должно получить уникальный ID")

		var p WeatherChangedPayload
		require.NoError(t, json.Unmarshal(ev.Payload, &p))
		assert.Equal(t, int32(3), p.Rain)
	case <-time.After(2 * time.Second):
		t.Fatal("Событие не доставлено подписчику")
	}
}

func TestMemoryBus_Filter(t *testing.T) {
	bus := NewMemoryBus(16)

	matched := make(chan string, 4)
	_, err := bus.Subscribe(context.Background(),
		Filter{Types: []string{EventNightSkip}},
		func(ctx context.Context, ev *Envelope) { matched <- ev.EventType })
	require.NoError(t, err)

	require.NoError(t, PublishJSON(context.Background(), bus, "dim", EventPlayerLeft, PlayerLeftPayload{}))
	require.NoError(t, PublishJSON(context.Background(), bus, "dim", EventNightSkip, NightSkipPayload{}))

	select {
	case typ := <-matched:
		assert.Equal(t, EventNightSkip, typ, "Фильтр должен пропускать только свой тип")
	case <-time.After(2 * time.Second):
		t.Fatal("Отфильтрованное событие не доставлено")
	}

	select {
	case typ := <-matched:
		t.Fatalf("Лишнее событие прошло фильтр: %s", typ)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(16)

	received := make(chan struct{}, 1)
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		received <- struct{}{}
	})
	require.NoError(t, err)

	sub.Unsubscribe()

	require.NoError(t, PublishJSON(context.Background(), bus, "dim", EventTileChanged, TileChangedPayload{}))

	select {
	case <-received:
		t.Fatal("Отписанный подписчик получил событие")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryBus_MetricsCountPublished(t *testing.T) {
	bus := NewMemoryBus(16)

	for i := 0; i < 3; i++ {
		require.NoError(t, PublishJSON(context.Background(), bus, "dim", EventPlayerLeft, PlayerLeftPayload{}))
	}

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published, "Все публикации должны посчитаться")
}
