// Package daily derives the shared dice sequence for the daily game.
//
// Every player who starts a daily game on the same UTC date gets a roller
// seeded from HMAC-SHA256(salt, YYYY-MM-DD), so the rolls come out in the
// same order for everyone.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the deterministic roller seed for the date of t.
func Seed(t time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	// first 8 bytes of the MAC
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
