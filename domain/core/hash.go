package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// ScheduleHash fingerprints a resampling schedule so traces produced from
// different schedules can be told apart before they are paired.
type ScheduleHash string

func (h ScheduleHash) String() string { return string(h) }

// Short returns the first 12 hex digits for log lines.
func (h ScheduleHash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeScheduleHash hashes the resample index sets in order. Resample
// boundaries are length-prefixed so [[0 1] [2]] and [[0] [1 2]] differ.
func ComputeScheduleHash(resamples [][]int) ScheduleHash {
	h := sha256.New()
	var buf [8]byte
	for _, r := range resamples {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(r)))
		h.Write(buf[:])
		for _, idx := range r {
			binary.LittleEndian.PutUint64(buf[:], uint64(idx))
			h.Write(buf[:])
		}
	}
	return ScheduleHash(hex.EncodeToString(h.Sum(nil)))
}
