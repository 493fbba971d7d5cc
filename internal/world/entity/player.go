package entity

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/google/uuid"
)

// Player представляет подключённого игрока.
// Игрок одновременно присутствует в общем индексе сущностей и в
// индексе игроков; оба обновляются одной составной операцией индекса.
type Player struct {
	Entity

	UUID     uuid.UUID // Постоянный идентификатор аккаунта
	Name     string    // Отображаемое имя
	Sleeping bool      // Спит ли игрок (для пропуска ночи)

	// watched — чанки, за которыми следит клиент (view distance).
	// Заполняется транспортом при подписке клиента на чанки.
	watched   map[vec.ChunkKey]struct{}
	watchedMu sync.RWMutex

	// outbox — персональная очередь исходящих пакетов (не чанковая
	// рассылка). Транспорт забирает её раз в тик.
	outbox   []protocol.Packet
	outboxMu sync.Mutex
}

// NewPlayer создаёт игрока с указанным entity-ID и идентификатором аккаунта
func NewPlayer(id uint64, accountUUID uuid.UUID, name string, position vec.Vec2) *Player {
	return &Player{
		Entity:  *NewEntity(id, EntityTypePlayer, position),
		UUID:    accountUUID,
		Name:    name,
		watched: make(map[vec.ChunkKey]struct{}),
	}
}

// Watch отмечает чанк как наблюдаемый клиентом
func (p *Player) Watch(key vec.ChunkKey) {
	p.watchedMu.Lock()
	p.watched[key] = struct{}{}
	p.watchedMu.Unlock()
}

// Unwatch снимает наблюдение с чанка
func (p *Player) Unwatch(key vec.ChunkKey) {
	p.watchedMu.Lock()
	delete(p.watched, key)
	p.watchedMu.Unlock()
}

// Watches сообщает, наблюдает ли клиент за чанком
func (p *Player) Watches(key vec.ChunkKey) bool {
	p.watchedMu.RLock()
	_, ok := p.watched[key]
	p.watchedMu.RUnlock()
	return ok
}

// WatchedCount возвращает количество наблюдаемых чанков
func (p *Player) WatchedCount() int {
	p.watchedMu.RLock()
	defer p.watchedMu.RUnlock()
	return len(p.watched)
}

// Send добавляет пакеты в персональную очередь игрока
func (p *Player) Send(pkts ...protocol.Packet) {
	if len(pkts) == 0 {
		return
	}
	p.outboxMu.Lock()
	p.outbox = append(p.outbox, pkts...)
	p.outboxMu.Unlock()
}

// DrainOutbox атомарно возвращает и очищает персональную очередь
func (p *Player) DrainOutbox() []protocol.Packet {
	p.outboxMu.Lock()
	out := p.outbox
	p.outbox = nil
	p.outboxMu.Unlock()
	return out
}
