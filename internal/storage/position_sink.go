package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/mmo-dimension/internal/eventbus"
	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/vec"
)

// PositionSink сохраняет последнюю позицию уходящих игроков: подписка на
// события PlayerLeft шины измерений, запись в PositionRepo. Числовой
// идентификатор пользователя выводится из UUID аккаунта, Z-компонента
// позиции — идентификатор измерения, из которого игрок ушёл.
type PositionSink struct {
	repo PositionRepo
	sub  eventbus.Subscription
	log  *logging.Logger
}

// NewPositionSink подписывает репозиторий позиций на события ухода игроков
func NewPositionSink(ctx context.Context, bus eventbus.EventBus, repo PositionRepo) (*PositionSink, error) {
	s := &PositionSink{
		repo: repo,
		log:  logging.GetStorageLogger(),
	}

	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: []string{eventbus.EventPlayerLeft}}, s.handle)
	if err != nil {
		return nil, fmt.Errorf("подписка на события ухода игроков: %w", err)
	}
	s.sub = sub
	return s, nil
}

// Close отписывает сток от шины
func (s *PositionSink) Close() {
	s.sub.Unsubscribe()
}

// handle сохраняет позицию из события. Ошибки не фатальны для игрового
// цикла: битое событие или отказ хранилища логируются и пропускаются.
func (s *PositionSink) handle(ctx context.Context, ev *eventbus.Envelope) {
	var p eventbus.PlayerLeftPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		s.log.Warn("Некорректное событие PlayerLeft: %v", err)
		return
	}

	userID, err := UserIDFromUUID(p.PlayerUUID)
	if err != nil {
		s.log.Warn("Некорректный UUID аккаунта %q: %v", p.PlayerUUID, err)
		return
	}

	pos := vec.Vec3{X: p.X, Y: p.Z, Z: int(p.DimensionID)}
	if err := s.repo.Save(ctx, userID, pos); err != nil {
		s.log.Warn("Не удалось сохранить позицию пользователя %d: %v", userID, err)
		return
	}
	s.log.Debug("Позиция пользователя %d сохранена: %+v", userID, pos)
}

// UserIDFromUUID выводит постоянный числовой идентификатор пользователя
// из UUID аккаунта (старшие 8 байт в big-endian). Детерминированно:
// один аккаунт всегда отображается в один и тот же userID.
func UserIDFromUUID(account string) (uint64, error) {
	u, err := uuid.Parse(account)
	if err != nil {
		return 0, fmt.Errorf("разбор UUID аккаунта: %w", err)
	}
	return binary.BigEndian.Uint64(u[:8]), nil
}
