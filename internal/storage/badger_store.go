package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/mmo-dimension/internal/logging"
	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world"
)

// chunkBlob — сериализованное представление чанка для BadgerDB
type chunkBlob struct {
	Coords vec.Vec2                                        `json:"coords"`
	Blocks [world.ChunkSize][world.ChunkSize]world.BlockID `json:"blocks"`
}

// BadgerChunkStore реализует world.ChunkStore поверх BadgerDB.
// Чанки хранятся zstd-сжатыми JSON-блобами под ключами chunk:x:z.
// Сгенерированные чанки сразу сохраняются, поэтому повторная загрузка
// после перезапуска не требует генерации.
type BadgerChunkStore struct {
	db      *badger.DB
	gen     *world.WorldGenerator
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	log     *logging.Logger
	mu      sync.RWMutex
	isReady bool
}

// NewBadgerChunkStore открывает хранилище чанков измерения в dataPath.
// gen используется для генерации отсутствующих чанков; nil-генератор
// означает, что Generate всегда промахивается.
func NewBadgerChunkStore(dataPath string, gen *world.WorldGenerator) (*BadgerChunkStore, error) {
	dbPath := filepath.Join(dataPath, "chunks")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-кодер: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd-декодер: %w", err)
	}

	return &BadgerChunkStore{
		db:      db,
		gen:     gen,
		enc:     enc,
		dec:     dec,
		log:     logging.GetStorageLogger(),
		isReady: true,
	}, nil
}

// Load загружает чанк из BadgerDB. Несохранённый чанк — (nil, nil).
func (s *BadgerChunkStore) Load(x, z int32) (*world.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	key := chunkKey(x, z)
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	raw, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки чанка (%d,%d): %w", x, z, err)
	}

	var blob chunkBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("ошибка десериализации чанка (%d,%d): %w", x, z, err)
	}

	return world.NewChunkWithBlocks(blob.Coords, blob.Blocks), nil
}

// Generate создаёт чанк генератором и сохраняет его
func (s *BadgerChunkStore) Generate(x, z int32) (*world.Chunk, error) {
	if s.gen == nil {
		return nil, fmt.Errorf("генератор не настроен")
	}

	chunk := s.gen.GenerateChunk(x, z)

	if err := s.Save(chunk); err != nil {
		// Чанк сгенерирован корректно, потеря записи не фатальна
		s.log.Warn("Не удалось сохранить сгенерированный чанк (%d,%d): %v", x, z, err)
	}

	return chunk, nil
}

// Save сохраняет чанк в BadgerDB
func (s *BadgerChunkStore) Save(chunk *world.Chunk) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	blob := chunkBlob{
		Coords: chunk.Coords,
		Blocks: chunk.BlocksSnapshot(),
	}

	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка: %w", err)
	}

	data := s.enc.EncodeAll(raw, nil)
	key := chunkKey(int32(chunk.Coords.X), int32(chunk.Coords.Y))

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	return nil
}

// Close закрывает хранилище
func (s *BadgerChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false

	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// chunkKey строит ключ BadgerDB для чанка
func chunkKey(x, z int32) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", x, z))
}
