// Copyright (c) 2023 BVK Chaitanya

// Package idgen derives a reproducible sequence of order reference ids from
// a seed string, so that a restarted trader can continue the sequence from a
// saved offset instead of reusing or guessing ids.
package idgen

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/google/uuid"
)

type Generator struct {
	base uuid.UUID
	next uint64
}

func New(seed string, offset uint64) *Generator {
	return &Generator{base: uuid.UUID(md5.Sum([]byte(seed))), next: offset}
}

// Offset returns the offset of the next id.
func (v *Generator) Offset() uint64 {
	return v.next
}

// At returns the id at an offset without moving the generator.
func (v *Generator) At(offset uint64) uuid.UUID {
	var buf [16 + 8]byte
	copy(buf[:16], v.base[:])
	binary.BigEndian.PutUint64(buf[16:], offset)
	id := uuid.UUID(md5.Sum(buf[:]))
	// Brokerage expects valid version 4 uuids for the reference ids.
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

func (v *Generator) NextID() uuid.UUID {
	id := v.At(v.next)
	v.next++
	return id
}
