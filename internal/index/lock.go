package index

import "sync/atomic"

// indexLock serializes indexing passes for a single Indexer. The store runs
// SQLite in WAL mode, which allows reads to proceed while a pass holds the
// lock; a second concurrent pass is rejected rather than queued.
type indexLock struct {
	busy atomic.Bool
}

func (l *indexLock) tryAcquire() bool {
	return l.busy.CompareAndSwap(false, true)
}

func (l *indexLock) release() {
	l.busy.Store(false)
}
