package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	mrand "math/rand/v2"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// randFloat returns a pseudo-random float64 in [0, 1). The top-level
// math/rand/v2 source is safe for concurrent use, so room goroutines and
// respawn timers can spawn without sharing any state of their own.
func randFloat() float64 {
	return mrand.Float64()
}

// randCoord returns a random map coordinate in [-MapHalfExtent, MapHalfExtent)
func randCoord() float64 {
	return randFloat()*2*MapHalfExtent - MapHalfExtent
}
