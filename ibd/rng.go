package ibd

import (
	"time"

	"golang.org/x/exp/rand"
)

//replicateSeed derives the random seed of one bootstrap replicate as a pure
//function of the master seed and the replicate index. Every replicate gets
//its own stream, so results do not depend on how replicates are scheduled
//across workers. The SplitMix64 finalizer decorrelates adjacent indices.
func replicateSeed(master uint64, index int) uint64 {
	z := master + uint64(index)*0x9e3779b97f4a7c15
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}

// newSource falls back to a wall-clock seed when the caller did not inject
// a source of their own.
func newSource(src rand.Source) rand.Source {
	if src != nil {
		return src
	}
	return rand.NewSource(uint64(time.Now().UnixNano()))
}
