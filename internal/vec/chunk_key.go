package vec

// ChunkKey — упакованный ключ чанка: старшие 32 бита — X, младшие — Z.
// Упаковка биективна, поэтому один и тот же ключ используется всеми
// структурами, индексируемыми по чанкам (индекс чанков, кэш пакетов,
// очередь рассылки).
type ChunkKey int64

// PackChunkKey упаковывает координаты чанка в единый ключ
func PackChunkKey(x, z int32) ChunkKey {
	return ChunkKey(int64(x)<<32 | int64(uint32(z)))
}

// Coords распаковывает ключ обратно в координаты чанка
func (k ChunkKey) Coords() (x, z int32) {
	return int32(k >> 32), int32(k & 0xFFFFFFFF)
}
