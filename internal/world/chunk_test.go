package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/mmo-dimension/internal/vec"
	"github.com/annel0/mmo-dimension/internal/world/entity"
)

func TestChunk_BlockOperations(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: 1, Y: 2})

	pos := vec.Vec2{X: 5, Y: 9}
	assert.Equal(t, BlockAir, chunk.GetBlock(pos), "Новый чанк заполнен воздухом")

	chunk.SetBlock(pos, BlockGrass)
	assert.Equal(t, BlockGrass, chunk.GetBlock(pos))

	// Остальные клетки не затронуты
	assert.Equal(t, BlockAir, chunk.GetBlock(vec.Vec2{X: 5, Y: 10}))
}

func TestChunk_Key(t *testing.T) {
	chunk := NewChunk(vec.Vec2{X: -3, Y: 4})
	assert.Equal(t, vec.PackChunkKey(-3, 4), chunk.Key())
}

func TestChunk_ResidentSets(t *testing.T) {
	chunk := NewChunk(vec.Vec2{})

	e := entity.NewEntity(1, entity.EntityTypeNPC, vec.Vec2{X: 1, Y: 1})
	chunk.addEntity(e)
	assert.Len(t, chunk.Entities(), 1)

	tile := entity.NewTile(2, entity.TileKindChest, vec.Vec2{X: 2, Y: 2})
	chunk.addTile(tile)
	assert.Len(t, chunk.Tiles(), 1)

	chunk.removeEntity(1)
	chunk.removeTile(2)
	assert.Empty(t, chunk.Entities())
	assert.Empty(t, chunk.Tiles())
}

func TestChunk_SnapshotIsCopy(t *testing.T) {
	chunk := NewChunk(vec.Vec2{})
	chunk.SetBlock(vec.Vec2{X: 0, Y: 0}, BlockStone)

	snap := chunk.BlocksSnapshot()
	snap[0][0] = BlockSand

	assert.Equal(t, BlockStone, chunk.GetBlock(vec.Vec2{X: 0, Y: 0}),
		"Мутация снимка не должна менять чанк")
}
