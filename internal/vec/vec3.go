package vec

// Vec3 представляет позицию с номером измерения в Z-компоненте.
// Используется репозиториями позиций: X/Y — мировые координаты,
// Z — идентификатор измерения, в котором игрок находился.
type Vec3 struct {
	X, Y, Z int
}

// ToVec2 отбрасывает компонент измерения
func (v Vec3) ToVec2() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}
