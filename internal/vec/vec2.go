package vec

import "math"

// Vec2 представляет 2D координаты (блоки или чанки)
type Vec2 struct {
	X, Y int
}

// ToChunkCoords преобразует глобальные координаты блока в координаты чанка
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Y: v.Y >> 4} // Деление на 16
}

// LocalInChunk возвращает локальные координаты внутри чанка
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0xF, Y: v.Y & 0xF} // Модуль 16
}

// ChunkKey возвращает упакованный ключ чанка, содержащего эту позицию
func (v Vec2) ChunkKey() ChunkKey {
	c := v.ToChunkCoords()
	return PackChunkKey(int32(c.X), int32(c.Y))
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
