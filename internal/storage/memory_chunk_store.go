package storage

import (
	"sync"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world"
)

// MemoryChunkStore реализует world.ChunkStore в памяти.
// Используется как fallback, когда диск недоступен,
// или для CI/локальной разработки без персистентности.
// ВНИМАНИЕ: Данные теряются при перезапуске сервера!
type MemoryChunkStore struct {
	mu     sync.RWMutex
	chunks map[vec.ChunkKey]*world.Chunk
	gen    *world.WorldGenerator
}

// NewMemoryChunkStore создаёт хранилище чанков в памяти
func NewMemoryChunkStore(gen *world.WorldGenerator) *MemoryChunkStore {
	return &MemoryChunkStore{
		chunks: make(map[vec.ChunkKey]*world.Chunk),
		gen:    gen,
	}
}

// Load возвращает сохранённый чанк; несохранённый — (nil, nil)
func (s *MemoryChunkStore) Load(x, z int32) (*world.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk := s.chunks[vec.PackChunkKey(x, z)]
	return chunk, nil
}

// Generate создаёт чанк генератором и запоминает его
func (s *MemoryChunkStore) Generate(x, z int32) (*world.Chunk, error) {
	if s.gen == nil {
		return nil, nil
	}

	chunk := s.gen.GenerateChunk(x, z)

	s.mu.Lock()
	s.chunks[vec.PackChunkKey(x, z)] = chunk
	s.mu.Unlock()

	return chunk, nil
}

// Save запоминает чанк
func (s *MemoryChunkStore) Save(chunk *world.Chunk) error {
	s.mu.Lock()
	s.chunks[chunk.Key()] = chunk
	s.mu.Unlock()
	return nil
}

// Count возвращает количество сохранённых чанков (для отладки)
func (s *MemoryChunkStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}
