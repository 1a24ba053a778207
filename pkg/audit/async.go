package audit

import (
	"context"
	"sync"
	"time"
)

// AsyncOptions tunes AsyncStorage batching.
type AsyncOptions struct {
	BufferSize     int
	BatchSize      int
	BatchTimeout   time.Duration
	StorageTimeout time.Duration
}

// AsyncStorage queues events and writes them to the wrapped storage in
// batches from a background goroutine. Store returns once the event is
// queued; when the queue is full it writes synchronously instead of dropping.
type AsyncStorage struct {
	next     Storage
	opts     AsyncOptions
	queue    chan Event
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
	onError  func(error)
	closedMu sync.RWMutex
	closed   bool
}

func NewAsyncStorage(next Storage, opts AsyncOptions, onError func(error)) *AsyncStorage {
	if next == nil {
		panic("audit: storage cannot be nil")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 100 * time.Millisecond
	}
	if opts.StorageTimeout <= 0 {
		opts.StorageTimeout = 5 * time.Second
	}
	if onError == nil {
		onError = func(error) {}
	}

	s := &AsyncStorage{
		next:    next,
		opts:    opts,
		queue:   make(chan Event, opts.BufferSize),
		done:    make(chan struct{}),
		onError: onError,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *AsyncStorage) Store(ctx context.Context, events ...Event) error {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	if s.closed {
		return ErrStorageNotAvailable
	}

	for i, e := range events {
		select {
		case s.queue <- e:
		default:
			return s.next.Store(ctx, events[i:]...)
		}
	}
	return nil
}

// Query reads straight from the wrapped storage; queued events are not
// visible until flushed.
func (s *AsyncStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	return s.next.Query(ctx, c)
}

func (s *AsyncStorage) run() {
	defer s.wg.Done()

	pending := make([]Event, 0, s.opts.BatchSize)
	ticker := time.NewTicker(s.opts.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.StorageTimeout)
		defer cancel()
		if err := s.next.Store(ctx, pending...); err != nil {
			s.onError(err)
		}
		pending = pending[:0]
	}

	for {
		select {
		case e := <-s.queue:
			pending = append(pending, e)
			if len(pending) >= s.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case e := <-s.queue:
					pending = append(pending, e)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close stops accepting events and flushes the queue. ctx bounds the wait.
func (s *AsyncStorage) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.closedMu.Lock()
		s.closed = true
		s.closedMu.Unlock()
		close(s.done)
	})

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
