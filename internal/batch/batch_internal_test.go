package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSize_ClampsBetweenFourAndSixteen(t *testing.T) {
	assert.Equal(t, 4, chunkSize(10, 10))  // perWorker=1, floored up to 4
	assert.Equal(t, 4, chunkSize(20, 10))  // perWorker=2, floored up to 4
	assert.Equal(t, 16, chunkSize(1000, 4)) // perWorker=250, capped at 16
	assert.Equal(t, 10, chunkSize(40, 4))  // perWorker=10, within bounds
}

func TestChunkSeeds_CoversEverySeedExactlyOnce(t *testing.T) {
	seeds := []uint64{1, 2, 3, 4, 5, 6, 7}
	chunks := chunkSeeds(seeds, 3)

	a := assert.New(t)
	a.Len(chunks, 3)
	a.Equal([]uint64{1, 2, 3}, chunks[0])
	a.Equal([]uint64{4, 5, 6}, chunks[1])
	a.Equal([]uint64{7}, chunks[2])
}

func TestHashStringToSeed_DeterministicAndKeySensitive(t *testing.T) {
	a := hashStringToSeed("scenario-1:2026-01-01")
	b := hashStringToSeed("scenario-1:2026-01-01")
	c := hashStringToSeed("scenario-2:2026-01-01")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
