package checkpoint

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of checkpoints a History retains.
const DefaultCapacity = 50

// historyConfig holds construction settings for a History.
type historyConfig struct {
	capacity int
	now      func() time.Time
	newID    func() string
	onEvict  func(Checkpoint)
}

func defaultHistoryConfig() historyConfig {
	return historyConfig{
		capacity: DefaultCapacity,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Option configures a History.
type Option func(*historyConfig)

// WithCapacity sets how many checkpoints are retained before the oldest
// are evicted. Default: 50. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(c *historyConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock overrides the time source used for checkpoint timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *historyConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides checkpoint id generation.
// Default: random UUIDs. The generator must never repeat a value.
func WithIDGenerator(newID func() string) Option {
	return func(c *historyConfig) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithEvictionHook registers fn to be called once for every checkpoint
// dropped from the front of the history, oldest first.
//
// fn receives a copy and runs synchronously inside Create or Load.
func WithEvictionHook(fn func(Checkpoint)) Option {
	return func(c *historyConfig) {
		c.onEvict = fn
	}
}
