package stream

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arloliu/dum/errs"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/internal/options"
)

// EncoderConfig holds the Encoder settings chosen at construction time.
type EncoderConfig struct {
	quality         format.Quality
	colorMapping    bool
	repeatDetection bool
	logger          *slog.Logger
}

// NewEncoderConfig returns the default configuration: lossless quality,
// color mapping and repeat detection enabled, logging discarded.
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		quality:         format.QualityLossless,
		colorMapping:    true,
		repeatDetection: true,
		logger:          discardLogger(),
	}
}

// Quality returns the configured quality level.
func (c *EncoderConfig) Quality() format.Quality {
	return c.quality
}

func (c *EncoderConfig) setQuality(q format.Quality) error {
	if !q.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedQuality, uint8(q))
	}
	c.quality = q

	return nil
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithQuality selects the frame codec used for frames with 256 or more
// distinct colors: QualityLow for 7-bit quantization, QualityMedium for 15-bit
// quantization, QualityLossless for raw frames.
func WithQuality(q format.Quality) EncoderOption {
	return options.Named("quality", func(c *EncoderConfig) error {
		return c.setQuality(q)
	})
}

// WithColorMapping enables or disables color-mapped frames for frames with
// fewer than 256 distinct colors. Enabled by default.
func WithColorMapping(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.colorMapping = enabled
	})
}

// WithRepeatDetection enables or disables replacing a frame identical to the
// previous one with a repeated frame record. Enabled by default.
func WithRepeatDetection(enabled bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.repeatDetection = enabled
	})
}

// WithLogger sets the logger for per-frame debug records. A nil logger discards.
func WithLogger(logger *slog.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.logger = orDiscard(logger)
	})
}

// WithVerbose logs debug records to stderr when enabled.
func WithVerbose(verbose bool) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.logger = verboseLogger(verbose)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger()
	}

	return logger
}

func verboseLogger(verbose bool) *slog.Logger {
	if !verbose {
		return discardLogger()
	}

	return newTextLogger(os.Stderr, slog.LevelDebug)
}

func newTextLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
