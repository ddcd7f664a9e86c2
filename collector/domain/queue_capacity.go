package domain

import (
	"errors"
	"fmt"
)

// QueueCapacity is the number of readings the sampling worker can hold
// before deliveries start to block.
type QueueCapacity uint32

// DefaultQueueCapacity covers roughly a second of game-rate delivery
// from the full catalog.
const DefaultQueueCapacity QueueCapacity = 1024

// MaxQueueCapacity bounds the memory the worker queue may reserve.
const MaxQueueCapacity QueueCapacity = 1 << 20

// NewQueueCapacity creates a new QueueCapacity instance.
func NewQueueCapacity(size int) (QueueCapacity, error) {
	if size <= 0 {
		return 0, errors.New("queue capacity must be greater than 0")
	}
	if size > int(MaxQueueCapacity) {
		return 0, fmt.Errorf("queue capacity must not exceed %d", MaxQueueCapacity)
	}

	return QueueCapacity(size), nil
}
