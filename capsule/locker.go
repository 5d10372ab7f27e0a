package capsule

import (
	"errors"
	"sync"
	"time"

	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/storage"

	log "github.com/sirupsen/logrus"
)

// Locker grants at most one in-flight run per key.
type Locker interface {
	Lock(key string) (unlock func(), err error)
}

type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ Locker = &MemoryLocker{}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]struct{})}
}

func (l *MemoryLocker) Lock(key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrRunInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// MongoLocker shares the single-flight guarantee across replicas through the
// database lock collection. Locks expire after TTL so a run interrupted by a
// crash can be taken over once PurgeExpired has reclaimed its lock.
type MongoLocker struct {
	TTL time.Duration
}

var _ Locker = MongoLocker{}

// LockTTL bounds a single run: two finalized confirmations plus the three
// uploads that precede them.
func LockTTL(confirmTimeout time.Duration, uploadTimeout time.Duration) time.Duration {
	if confirmTimeout <= 0 {
		confirmTimeout = chain.DefaultConfirmTimeout
	}
	if uploadTimeout <= 0 {
		uploadTimeout = storage.DefaultTimeout
	}
	return 2*confirmTimeout + 3*uploadTimeout
}

func (l MongoLocker) Lock(key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = LockTTL(0, 0)
	}

	resourceId := "capsule_run:" + key
	lockId, err := app.DB.XLock(resourceId, ttl)
	if errors.Is(err, app.ErrAlreadyLocked) {
		return nil, ErrRunInProgress
	}
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := app.DB.Unlock(lockId); err != nil {
				log.Error("[PIPELINE] Error unlocking ", resourceId, ": ", err)
			}
		})
	}, nil
}

// PurgeExpired drops run locks whose holders outlived their ttl.
func (MongoLocker) PurgeExpired() error {
	purged, err := app.DB.PurgeLocks()
	if err != nil {
		return err
	}
	if purged > 0 {
		log.Info("[PIPELINE] Purged ", purged, " expired run locks")
	}
	return nil
}
