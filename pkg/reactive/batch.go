package reactive

import (
	"runtime"
	"sync"
)

// batchContext holds the batch state for one goroutine. Batching is scoped
// to the goroutine that opened the batch: signals set on other goroutines
// while this batch is open still notify immediately.
type batchContext struct {
	// depth tracks nested Batch calls; only the outermost completion
	// flushes.
	depth int

	// order and pending accumulate deferred notifications, deduplicated
	// per signal and flushed in first-set order.
	order   []uint64
	pending map[uint64]func()
}

// batchContexts maps goroutine id to its batch context. An entry exists only
// while that goroutine has a batch open, so lookups from goroutines outside
// any batch miss and notify immediately.
var batchContexts sync.Map

// goroutineID parses the current goroutine's id out of its stack header
// ("goroutine <id> ..."). This is an implementation detail and is never
// exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Batch groups multiple signal updates into a single notification phase.
// Notifications for signals set inside the batch are deduplicated per signal
// and delivered when the outermost batch completes, each with the signal's
// value at completion time.
//
// Batches can be nested; only the outermost completion flushes. The batch
// covers the calling goroutine only.
//
// Example:
//
//	Batch(func() {
//	    editID.Set(id)
//	    editedPerson.Set(p)
//	})
//	// each signal notifies once, after both are set
func Batch(fn func()) {
	gid := goroutineID()

	var bc *batchContext
	if v, ok := batchContexts.Load(gid); ok {
		bc = v.(*batchContext)
	} else {
		bc = &batchContext{pending: make(map[uint64]func())}
		batchContexts.Store(gid, bc)
	}
	bc.depth++

	defer func() {
		bc.depth--
		if bc.depth > 0 {
			return
		}
		// Drop the context before flushing so a Set inside a
		// subscriber callback notifies immediately.
		batchContexts.Delete(gid)
		for _, id := range bc.order {
			bc.pending[id]()
		}
	}()

	fn()
}

// queueBatched records a deferred notification for the signal if the calling
// goroutine has a batch open. Returns false when it does not and the caller
// should notify immediately.
func queueBatched(id uint64, flush func()) bool {
	v, ok := batchContexts.Load(goroutineID())
	if !ok {
		return false
	}

	bc := v.(*batchContext)
	if _, queued := bc.pending[id]; !queued {
		bc.order = append(bc.order, id)
	}
	bc.pending[id] = flush
	return true
}
