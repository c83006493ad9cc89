package stream

import (
	"log/slog"

	"github.com/arloliu/dum/internal/options"
)

// DecoderConfig holds the Decoder settings chosen at construction time.
type DecoderConfig struct {
	logger *slog.Logger
}

// NewDecoderConfig returns the default configuration with logging discarded.
func NewDecoderConfig() *DecoderConfig {
	return &DecoderConfig{logger: discardLogger()}
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithDecoderLogger sets the logger for per-frame debug and seek records. A nil logger discards.
func WithDecoderLogger(logger *slog.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.logger = orDiscard(logger)
	})
}

// WithDecoderVerbose logs debug records to stderr when enabled.
func WithDecoderVerbose(verbose bool) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.logger = verboseLogger(verbose)
	})
}
