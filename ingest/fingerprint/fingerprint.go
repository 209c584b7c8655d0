// Package fingerprint provides lightweight, non-cryptographic hashing
// helpers used in a few places the core touches hashing: correlating a
// corrupt byte range in a fatal diagnostic, memoizing FASTA-Continuous
// windows, and (for downstream use only) deriving a reproducible per-read
// sampling tag from a seed.
package fingerprint

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"
	farm "github.com/dgryski/go-farm"
	"github.com/minio/highwayhash"
)

// Seahash computes a seahash checksum over raw record bytes. Used by
// ingest/patsrc to tag a Fatal diagnostic with the last successfully
// light-parsed record, so operators can correlate a corrupt byte range
// across retries.
func Seahash(b []byte) uint64 {
	h := seahash.New()
	h.Write(b)
	return h.Sum64()
}

// Farm64 computes a farmhash fingerprint over a FASTA-Continuous window's
// bytes. The continuous scanner memoizes the most recently emitted window's
// fingerprint so it can recognize a content-duplicate tail window without
// a byte-by-byte comparison.
func Farm64(b []byte) uint64 {
	return farm.Hash64(b)
}

// highwayKey is a fixed, arbitrary 32-byte key. HighwayKeyed folds the
// caller's 32-bit seed into the keyed hash rather than using the seed
// directly as a highwayhash key, since highwayhash requires a full 32-byte
// key.
var highwayKey = [highwayhash.Size]byte{
	0x9e, 0x37, 0x79, 0xb9, 0x7f, 0x4a, 0x7c, 0x15,
	0xf3, 0x9c, 0xc0, 0x60, 0x5c, 0xed, 0xc8, 0x34,
	0x1f, 0x83, 0xd9, 0xab, 0xfb, 0x41, 0xbd, 0x6b,
	0x5b, 0xe0, 0xcd, 0x19, 0x13, 0x7e, 0x21, 0x79,
}

// HighwayKeyed derives a reproducible per-read sampling tag from a
// Params.Seed and a read id. The core threads Seed through for downstream
// use only and never calls this itself.
func HighwayKeyed(seed uint32, id uint64) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], seed)
	binary.LittleEndian.PutUint64(buf[4:12], id)
	sum := highwayhash.Sum(buf[:], highwayKey[:])
	return binary.LittleEndian.Uint64(sum[:8])
}
