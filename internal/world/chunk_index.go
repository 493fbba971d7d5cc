package world

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/vec"
)

// ChunkStore — внешнее хранилище чанков (диск, сеть).
// Load возвращает (nil, nil), если чанк не сохранён — это не ошибка.
// Generate создаёт чанк заново; её ошибка распространяется как отсутствие.
type ChunkStore interface {
	Load(x, z int32) (*Chunk, error)
	Generate(x, z int32) (*Chunk, error)
}

// chunkLoad — загрузка чанка в полёте. Повторные промахи по тому же
// ключу присоединяются к первой загрузке и получают её результат,
// поэтому два одновременных промаха не порождают два разных экземпляра.
type chunkLoad struct {
	done  chan struct{}
	chunk *Chunk
	ok    bool
}

// ChunkIndex отображает упакованный ключ чанка на загруженное состояние.
// Горячий путь чтения — один поиск в хэш-таблице; медленное хранилище
// трогается только на промахах.
type ChunkIndex struct {
	mu     sync.RWMutex
	chunks map[vec.ChunkKey]*Chunk
	loads  map[vec.ChunkKey]*chunkLoad
	store  ChunkStore
	log    *logging.Logger
}

// NewChunkIndex создаёт индекс поверх указанного хранилища
func NewChunkIndex(store ChunkStore) *ChunkIndex {
	return &ChunkIndex{
		chunks: make(map[vec.ChunkKey]*Chunk),
		loads:  make(map[vec.ChunkKey]*chunkLoad),
		store:  store,
		log:    logging.GetWorldLogger(),
	}
}

// Get возвращает чанк по координатам.
//
// Резидентный чанк возвращается как есть (идентичность стабильна между
// вызовами). Иначе чанк запрашивается у ChunkStore: Load, затем — при
// generate=true — Generate. Оба промаха дают (nil, false): «чанк не
// загружен» — штатное состояние, не ошибка.
func (ci *ChunkIndex) Get(x, z int32, generate bool) (*Chunk, bool) {
	key := vec.PackChunkKey(x, z)

	ci.mu.RLock()
	chunk, resident := ci.chunks[key]
	ci.mu.RUnlock()
	if resident {
		return chunk, true
	}

	for {
		ci.mu.Lock()
		// Проверяем еще раз под блокировкой записи
		if chunk, resident = ci.chunks[key]; resident {
			ci.mu.Unlock()
			return chunk, true
		}

		if inflight, ok := ci.loads[key]; ok {
			// Загрузка уже идёт — присоединяемся к её результату
			ci.mu.Unlock()
			<-inflight.done
			if inflight.ok {
				return inflight.chunk, true
			}
			if !generate {
				return nil, false
			}
			// Первая загрузка была без генерации и промахнулась;
			// повторяем цикл, чтобы загрузить с генерацией.
			continue
		}

		load := &chunkLoad{done: make(chan struct{})}
		ci.loads[key] = load
		ci.mu.Unlock()

		chunk = ci.fetch(x, z, generate)

		ci.mu.Lock()
		if chunk != nil {
			ci.chunks[key] = chunk
			load.chunk = chunk
			load.ok = true
		}
		delete(ci.loads, key)
		ci.mu.Unlock()
		close(load.done)

		return chunk, chunk != nil
	}
}

// Resident возвращает чанк только если он уже загружен
func (ci *ChunkIndex) Resident(x, z int32) (*Chunk, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	chunk, ok := ci.chunks[vec.PackChunkKey(x, z)]
	return chunk, ok
}

// Len возвращает количество резидентных чанков
func (ci *ChunkIndex) Len() int {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return len(ci.chunks)
}

// fetch обращается к хранилищу: Load, затем (generate) Generate.
// Ошибки хранилища логируются и трактуются как отсутствие чанка.
func (ci *ChunkIndex) fetch(x, z int32, generate bool) *Chunk {
	if ci.store == nil {
		return nil
	}

	chunk, err := ci.store.Load(x, z)
	if err != nil {
		ci.log.Warn("Ошибка загрузки чанка (%d,%d): %v", x, z, err)
	}
	if chunk != nil {
		return chunk
	}
	if !generate {
		return nil
	}

	chunk, err = ci.store.Generate(x, z)
	if err != nil {
		ci.log.Warn("Ошибка генерации чанка (%d,%d): %v", x, z, err)
		return nil
	}
	return chunk
}
