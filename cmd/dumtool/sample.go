package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
	"github.com/arloliu/dum/stream"
)

const (
	sampleSize  = 20
	sampleFPS   = 30
	sampleScale = 32
)

var sampleQualities = []format.Quality{format.QualityLow, format.QualityMedium, format.QualityLossless}

func sampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Write synthetic sample DUM files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory", Value: "samples"},
			verboseFlag(),
		},
		Action: runSample,
	}
}

func runSample(_ context.Context, c *cli.Command) error {
	dir := c.String("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, name := range []string{"red", "green", "blue"} {
		frame := gradientSample(name)
		header := section.NewHeader(sampleFPS, sampleSize, sampleSize, sampleScale, sampleScale, 1)

		for _, quality := range sampleQualities {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.dum", name, strings.ToLower(quality.String())))
			if err := writeSample(c, path, *header, []pixel.Frame{frame}, stream.WithQuality(quality)); err != nil {
				return err
			}
		}
	}

	red, black := pixel.RGB(255, 0, 0), pixel.RGB(0, 0, 0)
	simple := []pixel.Frame{
		{red, black, black, black},
		{black, red, black, black},
		{black, black, black, red},
		{black, black, red, black},
	}
	header := section.NewHeader(4, 2, 2, 150, 150, uint32(len(simple)))

	return writeSample(c, filepath.Join(dir, "simple.dum"), *header, simple)
}

func writeSample(c *cli.Command, path string, header section.Header, frames []pixel.Frame, opts ...stream.EncoderOption) error {
	enc, err := dum.Create(path, header, encoderOptions(c, opts...)...)
	if err != nil {
		return err
	}

	for _, frame := range frames {
		if _, err := enc.WriteFrame(frame); err != nil {
			_ = enc.Close()
			return err
		}
	}

	stats := enc.Stats()
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d bytes\n", path, stats.Bytes)

	return nil
}

// gradientSample returns a 20x20 frame that fades the named channel down over
// the first half and back up over the second, with a faint second channel.
func gradientSample(channel string) pixel.Frame {
	const half = sampleSize * sampleSize / 2

	frame := make(pixel.Frame, 0, 2*half)
	for i := range 2 * half {
		var ramp, faint, other uint8
		if i < half {
			ramp, faint = uint8(255-i), 10 //nolint:gosec
		} else {
			ramp, other = uint8(255-half-1+i-half), 10 //nolint:gosec
		}

		switch channel {
		case "red":
			frame = append(frame, pixel.RGB(ramp, other, faint))
		case "green":
			frame = append(frame, pixel.RGB(other, ramp, faint))
		default:
			frame = append(frame, pixel.RGB(other, faint, ramp))
		}
	}

	return frame
}
