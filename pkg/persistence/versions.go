// Package persistence holds helpers shared by the session store adapters.
package persistence

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultVersionTTL bounds how long a loaded row version is remembered.
// A Save later than that is treated as a blind write.
const DefaultVersionTTL = 10 * time.Minute

// Versions remembers the row version each session key had when it was last read or
// written by this process. SQL stores use it for optimistic concurrency: a Save that
// follows a Load only succeeds if nobody else wrote the row in between.
type Versions struct {
	seen *gocache.Cache
}

// NewVersions creates a tracker whose entries expire after ttl.
func NewVersions(ttl time.Duration) *Versions {
	if ttl <= 0 {
		ttl = DefaultVersionTTL
	}
	return &Versions{seen: gocache.New(ttl, 2*ttl)}
}

// Seen returns the remembered version of key.
func (v *Versions) Seen(key string) (int64, bool) {
	val, ok := v.seen.Get(key)
	if !ok {
		return 0, false
	}
	return val.(int64), true
}

// Remember records the version of key.
func (v *Versions) Remember(key string, version int64) {
	v.seen.SetDefault(key, version)
}

// Forget drops key.
func (v *Versions) Forget(key string) {
	v.seen.Delete(key)
}
