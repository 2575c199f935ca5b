package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/recipebox/core/internal/ports"
)

// ID strategies accepted by NewIDGenerator
const (
	IDStrategyTimestamp = "timestamp"
	IDStrategyUUID      = "uuid"
)

// TimestampIDGenerator issues the current Unix time in milliseconds.
// Two recipes created within the same millisecond get the same id.
type TimestampIDGenerator struct {
	now func() time.Time
}

// NewTimestampIDGenerator creates a generator reading the wall clock
func NewTimestampIDGenerator() *TimestampIDGenerator {
	return &TimestampIDGenerator{now: time.Now}
}

func (g *TimestampIDGenerator) NewID() string {
	return strconv.FormatInt(g.now().UnixMilli(), 10)
}

// UUIDGenerator issues random version 4 UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator for the named strategy
func NewIDGenerator(strategy string) (ports.IDGenerator, error) {
	switch strategy {
	case IDStrategyTimestamp, "":
		return NewTimestampIDGenerator(), nil
	case IDStrategyUUID:
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %q (supported: timestamp, uuid)", strategy)
	}
}
