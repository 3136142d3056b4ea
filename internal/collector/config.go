package collector

import (
	"errors"

	"rankdelta/internal/riot"
)

const (
	DefaultMaxPages      = 10
	DefaultMatchIDCount  = 50
	DefaultMatchType     = "ranked"
	DefaultWorkers       = 2
	DefaultProgressEvery = 100
)

// ErrAllItemsFailed is returned by a stage whose every item was skipped.
var ErrAllItemsFailed = errors.New("every item in the batch failed")

// Config holds crawl tunables shared by every stage.
type Config struct {
	Platform       string
	Queue          string // ladder queue
	MaxPages       int    // 0 = until an empty page
	MatchIDCount   int
	MatchType      string
	MatchIDWorkers int
	MatchWorkers   int
	ProgressEvery  int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Platform:       "na1",
		Queue:          riot.SoloQueue,
		MaxPages:       DefaultMaxPages,
		MatchIDCount:   DefaultMatchIDCount,
		MatchType:      DefaultMatchType,
		MatchIDWorkers: DefaultWorkers,
		MatchWorkers:   DefaultWorkers,
		ProgressEvery:  DefaultProgressEvery,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Platform == "" {
		c.Platform = d.Platform
	}
	if c.Queue == "" {
		c.Queue = d.Queue
	}
	if c.MatchIDCount <= 0 {
		c.MatchIDCount = d.MatchIDCount
	}
	if c.MatchType == "" {
		c.MatchType = d.MatchType
	}
	if c.MatchIDWorkers <= 0 {
		c.MatchIDWorkers = d.MatchIDWorkers
	}
	if c.MatchWorkers <= 0 {
		c.MatchWorkers = d.MatchWorkers
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = d.ProgressEvery
	}
	return c
}
