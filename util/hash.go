package util

import (
	"crypto/sha1"

	"github.com/btcsuite/btcutil"
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160"
)

// HashBlake2b calculates the hash blake2b(b).
func HashBlake2b(buf []byte) []byte {
	hashedBuf := blake2b.Sum256(buf)
	return hashedBuf[:]
}

// HashSHA256 calculates the hash sha256(b).
func HashSHA256(buf []byte) []byte {
	hashedBuf := sha256.Sum256(buf)
	return hashedBuf[:]
}

// DoubleHashSHA256 calculates the hash sha256(sha256(b)).
func DoubleHashSHA256(buf []byte) []byte {
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:]
}

// HashRipemd160 calculates the hash ripemd160(b).
func HashRipemd160(buf []byte) []byte {
	hasher := ripemd160.New()
	_, _ = hasher.Write(buf)
	return hasher.Sum(nil)
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return btcutil.Hash160(buf)
}

// HashSHA1 calculates the hash sha1(b).
func HashSHA1(buf []byte) []byte {
	hashedBuf := sha1.Sum(buf)
	return hashedBuf[:]
}
