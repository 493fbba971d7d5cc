package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/protocol"
	"github.com/annel0/mmo-dimension/internal/vec"
)

// PacketQueue накапливает исходящие пакеты по ключу чанка до сброса
// транспортом и держит кэш скомпилированных чанк-пакетов.
//
// Пакеты хранятся в порядке поступления, без дедупликации и приоритетов;
// очередь не ограничена — её размер ограничивает только частота DrainAll
// (раз в тик). Кэш скомпилированного пакета живёт до первой структурной
// мутации чанка (тайл, блок), после чего лениво пересобирается.
type PacketQueue struct {
	mu       sync.Mutex
	batches  map[vec.ChunkKey][]protocol.Packet
	compiled map[vec.ChunkKey]*protocol.ChunkDataPacket

	// Счётчики для экспортера метрик
	enqueued    uint64
	drained     uint64
	invalidated uint64
}

// QueueStats — агрегированные показатели очереди
type QueueStats struct {
	Enqueued    uint64 // Пакетов поставлено в очередь
	Drained     uint64 // Пакетов отдано транспорту
	Invalidated uint64 // Сбросов кэша скомпилированных чанков
	Pending     int    // Батчей, ожидающих сброса
	Compiled    int    // Чанков с валидным кэшем
}

// NewPacketQueue создаёт пустую очередь рассылки
func NewPacketQueue() *PacketQueue {
	return &PacketQueue{
		batches:  make(map[vec.ChunkKey][]protocol.Packet),
		compiled: make(map[vec.ChunkKey]*protocol.ChunkDataPacket),
	}
}

// Enqueue добавляет пакеты в батч чанка (cx, cz), создавая батч при
// необходимости. Вызов без пакетов — no-op.
func (q *PacketQueue) Enqueue(cx, cz int32, pkts ...protocol.Packet) {
	if len(pkts) == 0 {
		return
	}

	key := vec.PackChunkKey(cx, cz)

	q.mu.Lock()
	q.batches[key] = append(q.batches[key], pkts...)
	q.enqueued += uint64(len(pkts))
	q.mu.Unlock()
}

// DrainAll атомарно возвращает все батчи и очищает очередь.
// Вызывается транспортом один раз за тик после игровых мутаций.
func (q *PacketQueue) DrainAll() map[vec.ChunkKey][]protocol.Packet {
	q.mu.Lock()
	out := q.batches
	q.batches = make(map[vec.ChunkKey][]protocol.Packet)
	for _, batch := range out {
		q.drained += uint64(len(batch))
	}
	q.mu.Unlock()
	return out
}

// Compiled возвращает кэшированный скомпилированный пакет чанка
func (q *PacketQueue) Compiled(key vec.ChunkKey) (*protocol.ChunkDataPacket, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pkt, ok := q.compiled[key]
	return pkt, ok
}

// SetCompiled сохраняет скомпилированный пакет чанка в кэш
func (q *PacketQueue) SetCompiled(key vec.ChunkKey, pkt *protocol.ChunkDataPacket) {
	q.mu.Lock()
	q.compiled[key] = pkt
	q.mu.Unlock()
}

// InvalidateCompiled сбрасывает кэш одного чанка. Кэши остальных чанков
// не затрагиваются.
func (q *PacketQueue) InvalidateCompiled(key vec.ChunkKey) {
	q.mu.Lock()
	if _, ok := q.compiled[key]; ok {
		delete(q.compiled, key)
		q.invalidated++
	}
	q.mu.Unlock()
}

// Stats возвращает текущие показатели очереди
func (q *PacketQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Enqueued:    q.enqueued,
		Drained:     q.drained,
		Invalidated: q.invalidated,
		Pending:     len(q.batches),
		Compiled:    len(q.compiled),
	}
}
