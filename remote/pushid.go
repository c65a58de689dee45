package remote

import (
	"crypto/rand"
	"sync"
	"time"
)

// Push ids follow the Realtime Database format: 20 characters, the
// first 8 encoding the allocation time so ids sort chronologically, the
// last 12 random. Ids allocated in the same millisecond reuse the
// previous random suffix incremented by one, which keeps ordering
// strict even within a millisecond.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushMu sync.Mutex
var lastPushMillis int64
var lastRand [12]int

func newPushID(now time.Time) string {
	pushMu.Lock()
	defer pushMu.Unlock()

	millis := now.UnixMilli()
	duplicate := millis == lastPushMillis
	lastPushMillis = millis

	var id [20]byte
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[millis%64]
		millis /= 64
	}

	if duplicate {
		for i := 11; i >= 0; i-- {
			if lastRand[i] != 63 {
				lastRand[i]++
				break
			}
			lastRand[i] = 0
		}
	} else {
		var buf [12]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand does not fail on supported platforms; fall
			// back to a counter continuation if it ever does.
			for i := range lastRand {
				lastRand[i] = (lastRand[i] + 1) % 64
			}
		} else {
			for i, b := range buf {
				lastRand[i] = int(b) % 64
			}
		}
	}
	for i, r := range lastRand {
		id[8+i] = pushChars[r]
	}
	return string(id[:])
}
