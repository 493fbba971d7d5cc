package world

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/mmo-dimension/internal/vec"
)

// Пороги высот для генерации ландшафта
const (
	deepWaterMax    = 0.20 // Ниже — глубинная вода
	shallowWaterMax = 0.30 // Ниже — мелководье
	mountainStart   = 0.80 // Выше — горы
)

// WorldGenerator генерирует ландшафт чанков шумом Перлина.
// Генератор детерминирован: одинаковые сид и координаты всегда дают
// одинаковый чанк. Состояние не разделяется между измерениями —
// у каждого измерения свой экземпляр со своим сидом.
type WorldGenerator struct {
	seed       int64
	noiseScale float64 // Масштаб основного шума (высота)
	biomeScale float64 // Масштаб шума биомов
	noise      *perlin.Perlin
	biomeNoise *perlin.Perlin
	palette    terrainPalette
}

// terrainPalette — набор блоков для вида измерения
type terrainPalette struct {
	deep     BlockID
	shallow  BlockID
	low      BlockID
	mid      BlockID
	mountain BlockID
}

// NewWorldGenerator создаёт генератор для вида typ с указанным сидом
func NewWorldGenerator(seed int64, typ DimensionType) *WorldGenerator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав

	return &WorldGenerator{
		seed:       seed,
		noiseScale: 0.05, // Настройка сглаженности ландшафта
		biomeScale: 0.02, // Настройка размера биомов
		noise:      perlin.NewPerlin(alpha, beta, n, seed),
		biomeNoise: perlin.NewPerlin(alpha, beta, n, seed+42),
		palette:    paletteFor(typ),
	}
}

// paletteFor подбирает набор блоков под вид измерения
func paletteFor(typ DimensionType) terrainPalette {
	switch typ.ID {
	case DimensionNether:
		return terrainPalette{
			deep:     BlockNetherrack,
			shallow:  BlockNetherrack,
			low:      BlockNetherrack,
			mid:      BlockNetherrack,
			mountain: BlockStone,
		}
	case DimensionTheEnd:
		return terrainPalette{
			deep:     BlockAir,
			shallow:  BlockAir,
			low:      BlockEndStone,
			mid:      BlockEndStone,
			mountain: BlockEndStone,
		}
	default:
		return terrainPalette{
			deep:     BlockDeepWater,
			shallow:  BlockWater,
			low:      BlockSand,
			mid:      BlockGrass,
			mountain: BlockStone,
		}
	}
}

// GenerateChunk генерирует чанк по его координатам
func (wg *WorldGenerator) GenerateChunk(x, z int32) *Chunk {
	coords := vec.Vec2{X: int(x), Y: int(z)}

	// Уникальный сид чанка для детерминированных локальных решений
	chunkSeed := wg.seed + int64(x)*31 + int64(z)*17
	rng := rand.New(rand.NewSource(chunkSeed))

	var blocks [ChunkSize][ChunkSize]BlockID

	globalStartX := int(x) << 4
	globalStartZ := int(z) << 4

	for lz := 0; lz < ChunkSize; lz++ {
		for lx := 0; lx < ChunkSize; lx++ {
			globalX := globalStartX + lx
			globalZ := globalStartZ + lz

			height := wg.noise2D(wg.noise, float64(globalX)*wg.noiseScale, float64(globalZ)*wg.noiseScale)
			biome := wg.noise2D(wg.biomeNoise, float64(globalX)*wg.biomeScale, float64(globalZ)*wg.biomeScale)
			blocks[lx][lz] = wg.blockForHeight(height, biome, rng)
		}
	}

	return NewChunkWithBlocks(coords, blocks)
}

// noise2D возвращает шум в диапазоне [0, 1]
func (wg *WorldGenerator) noise2D(p *perlin.Perlin, x, y float64) float64 {
	return (p.Noise2D(x, y) + 1.0) / 2.0
}

// blockForHeight выбирает блок из палитры по высоте и значению биома
func (wg *WorldGenerator) blockForHeight(height, biome float64, rng *rand.Rand) BlockID {
	switch {
	case height < deepWaterMax:
		return wg.palette.deep
	case height < shallowWaterMax:
		return wg.palette.shallow
	case height < 0.45:
		return wg.palette.low
	case height < mountainStart:
		// Засушливые области и редкие вкрапления земли на равнинах
		if wg.palette.mid == BlockGrass {
			if biome < 0.25 {
				return BlockSand
			}
			if rng.Float64() < 0.05 {
				return BlockDirt
			}
		}
		return wg.palette.mid
	default:
		// Снежные шапки только в Overworld
		if wg.palette.mid == BlockGrass && rng.Float64() < 0.1 {
			return BlockSnow
		}
		return wg.palette.mountain
	}
}
