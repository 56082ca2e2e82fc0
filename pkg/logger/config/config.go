package config

import (
	"fmt"
	"time"
)

// levels follow zapcore.Level
const (
	DEBUG_LEVEL = -1
	INFO_LEVEL  = 0
	WARN_LEVEL  = 1
	ERROR_LEVEL = 2
	FATAL_LEVEL = 5
)

type Configuration struct {
	Level      int
	TimeFormat string
}

func (c Configuration) Validate() error {
	if c.Level < DEBUG_LEVEL || c.Level > FATAL_LEVEL {
		return fmt.Errorf("invalid LOG_LEVEL %d, must be within [%d, %d]", c.Level, DEBUG_LEVEL, FATAL_LEVEL)
	}
	if c.TimeFormat == "" {
		return fmt.Errorf("LOG_TIME_FORMAT is empty")
	}
	if _, err := time.Parse(c.TimeFormat, time.Now().Format(c.TimeFormat)); err != nil {
		return fmt.Errorf("invalid LOG_TIME_FORMAT %q: %w", c.TimeFormat, err)
	}
	return nil
}
