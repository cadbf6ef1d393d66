package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
)

// release deletes the key only if it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLockTimeout = errors.New("lock wait timed out")

// Locker is a Redis-backed mutual exclusion per key, shared by every process
// pointing at the same Redis. A holder that dies releases implicitly after TTL.
//
// The lock is not renewed: TTL must exceed the longest time a holder keeps it
// (one load-check-save of a collection). A release that finds the key expired
// or taken over is logged at Warn, since exclusion was lost for that holder.
type Locker struct {
	rdb    *redis.Client
	Logger *logrus.Logger
	Prefix string
	TTL    time.Duration
	Wait   time.Duration
	Retry  time.Duration
}

func NewLocker(rdb *redis.Client, prefix string, logger *logrus.Logger) *Locker {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &Locker{
		rdb:    rdb,
		Logger: logger,
		Prefix: prefix,
		TTL:    10 * time.Second,
		Wait:   5 * time.Second,
		Retry:  25 * time.Millisecond,
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.Prefix + "lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			acquired := time.Now()
			return func() { l.unlock(k, token, acquired) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}
}

func (l *Locker) unlock(k, token string, acquired time.Time) {
	// the caller's ctx may already be cancelled
	c, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	entry := l.Logger.WithFields(logrus.Fields{"key": k, "held": time.Since(acquired).String()})
	deleted, err := release.Run(c, l.rdb, []string{k}, token).Int()
	switch {
	case err != nil:
		entry.WithError(err).Error("release lock failed, it expires after TTL")
	case deleted == 0:
		entry.WithField("ttl", l.TTL.String()).Warn("lock expired before release")
	}
}
