package world

import (
	"errors"
	"fmt"
)

// SkyColor определяет цвет неба измерения
type SkyColor uint8

const (
	SkyColorBlue SkyColor = iota
	SkyColorRed
	SkyColorPurple // Статичный фиолетовый (энд-подобные измерения)
)

// String возвращает строковое представление цвета неба
func (s SkyColor) String() string {
	switch s {
	case SkyColorBlue:
		return "blue"
	case SkyColorRed:
		return "red"
	case SkyColorPurple:
		return "purple"
	default:
		return "unknown"
	}
}

// DimensionType — неизменяемое описание вида измерения.
// Создаётся один раз при старте процесса и никогда не мутируется.
type DimensionType struct {
	ID                 int32    // Малый положительный идентификатор вида
	Name               string   // Имя вида ("overworld", "nether", "the_end")
	SkyColor           SkyColor // Цвет неба
	MaxBuildHeight     int32    // Максимальная высота строительства
	DistanceMultiplier float64  // Базовый множитель расстояний между измерениями
}

// Идентификаторы встроенных видов измерений.
const (
	DimensionOverworld int32 = 0
	DimensionNether    int32 = 1
	DimensionTheEnd    int32 = 2
)

// ErrInvalidDimensionType возвращается при запросе неизвестного вида измерения.
// Это ошибка программиста: валидные идентификаторы известны на этапе регистрации.
var ErrInvalidDimensionType = errors.New("world: неизвестный вид измерения")

// dimensionTypes — таблица встроенных видов. Только чтение после инициализации.
var dimensionTypes = map[int32]DimensionType{
	DimensionOverworld: {
		ID:                 DimensionOverworld,
		Name:               "overworld",
		SkyColor:           SkyColorBlue,
		MaxBuildHeight:     256,
		DistanceMultiplier: 1.0,
	},
	DimensionNether: {
		ID:                 DimensionNether,
		Name:               "nether",
		SkyColor:           SkyColorRed,
		MaxBuildHeight:     128,
		DistanceMultiplier: 8.0, // 8:1 к оверворлду
	},
	DimensionTheEnd: {
		ID:                 DimensionTheEnd,
		Name:               "the_end",
		SkyColor:           SkyColorPurple,
		MaxBuildHeight:     256,
		DistanceMultiplier: 1.0,
	},
}

// DimensionTypeByID возвращает вид измерения по идентификатору.
// Неизвестный идентификатор — ErrInvalidDimensionType.
func DimensionTypeByID(id int32) (DimensionType, error) {
	t, ok := dimensionTypes[id]
	if !ok {
		return DimensionType{}, fmt.Errorf("%w: %d", ErrInvalidDimensionType, id)
	}
	return t, nil
}
