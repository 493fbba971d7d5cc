package world

import (
	"errors"
	"fmt"

	"github.com/annel0/mmo-dimension/internal/eventbus"
)

// DimensionFactory создаёт измерение по зависимостям.
// Это типизированная замена рантайм-проверок "класс наследует Dimension,
// реализует маркер, не абстрактен": способность быть измерением выражена
// самим интерфейсом и проверяется компилятором.
type DimensionFactory interface {
	NewDimension(deps DimensionDeps) *Dimension
}

// DimensionFactoryFunc адаптирует функцию к интерфейсу DimensionFactory
type DimensionFactoryFunc func(deps DimensionDeps) *Dimension

// NewDimension вызывает функцию-фабрику
func (f DimensionFactoryFunc) NewDimension(deps DimensionDeps) *Dimension {
	return f(deps)
}

// DimensionDeps — зависимости, передаваемые фабрике при создании измерения
type DimensionDeps struct {
	Store   ChunkStore        // Хранилище чанков (загрузка/генерация)
	Bus     eventbus.EventBus // Шина событий измерения (может быть nil)
	Weather WeatherConfig     // Параметры планировщика погоды
}

// AutoID — сигнальное значение: идентификатор назначает сам реестр
const AutoID int32 = -1

// customIDSeed — начало диапазона автоназначаемых идентификаторов.
// Выбрано заведомо выше встроенных, коллизии с ними исключены.
const customIDSeed int32 = 1000

var (
	// ErrIDAlreadyBound — идентификатор уже занят и override не запрошен
	ErrIDAlreadyBound = errors.New("world: идентификатор измерения уже занят")

	// ErrInvalidDimensionFactory — фабрика nil (остаток рантайм-проверки
	// способностей, который система типов выразить не может)
	ErrInvalidDimensionFactory = errors.New("world: недопустимая фабрика измерения")
)

// DimensionRegistry — процессная таблица фабрик измерений.
// Создаётся один раз при старте и передаётся по ссылке; регистрация
// выполняется в однопоточной фазе инициализации (startup / загрузка
// плагинов), внутренняя синхронизация для писателей не предоставляется.
type DimensionRegistry struct {
	factories map[int32]DimensionFactory
	nextID    int32
}

// NewDimensionRegistry создаёт реестр с предзарегистрированными
// встроенными видами (Overworld=0, Nether=1, TheEnd=2).
func NewDimensionRegistry() *DimensionRegistry {
	r := &DimensionRegistry{
		factories: make(map[int32]DimensionFactory),
		nextID:    customIDSeed,
	}

	for id := range dimensionTypes {
		typ := dimensionTypes[id]
		r.factories[id] = DimensionFactoryFunc(func(deps DimensionDeps) *Dimension {
			return NewDimension(typ, deps)
		})
	}

	return r
}

// Register привязывает фабрику к идентификатору.
//
// id == AutoID — реестр назначает следующий свободный идентификатор из
// монотонного счётчика (seed 1000, выше всех встроенных).
// Занятый идентификатор без override — ErrIDAlreadyBound, привязка не
// меняется. Встроенные виды вытесняются только явным override=true.
func (r *DimensionRegistry) Register(f DimensionFactory, id int32, override bool) (int32, error) {
	if f == nil {
		return 0, ErrInvalidDimensionFactory
	}

	if id == AutoID {
		id = r.nextID
		r.nextID++
		// Счётчик засеян выше встроенных, но защищаемся и от явных
		// регистраций в кастомном диапазоне.
		for _, bound := r.factories[id]; bound; _, bound = r.factories[id] {
			id = r.nextID
			r.nextID++
		}
	} else if _, bound := r.factories[id]; bound && !override {
		return 0, fmt.Errorf("%w: %d", ErrIDAlreadyBound, id)
	}

	r.factories[id] = f
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return id, nil
}

// Factory возвращает фабрику по идентификатору
func (r *DimensionRegistry) Factory(id int32) (DimensionFactory, bool) {
	f, ok := r.factories[id]
	return f, ok
}

// Create создаёт измерение зарегистрированной фабрикой
func (r *DimensionRegistry) Create(id int32, deps DimensionDeps) (*Dimension, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimensionType, id)
	}
	return f.NewDimension(deps), nil
}

// Len возвращает количество зарегистрированных фабрик
func (r *DimensionRegistry) Len() int {
	return len(r.factories)
}
