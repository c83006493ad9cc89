package main

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum"
	"github.com/arloliu/dum/format"
	"github.com/arloliu/dum/pixel"
	"github.com/arloliu/dum/section"
	"github.com/arloliu/dum/stream"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode images as the frames of a DUM file",
		ArgsUsage: "IMAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output DUM file", Required: true},
			&cli.IntFlag{Name: "width", Usage: "Frame width, defaults to the first image's width"},
			&cli.IntFlag{Name: "height", Usage: "Frame height, defaults to the first image's height"},
			&cli.IntFlag{Name: "fps", Usage: "Frame rate", Value: 1},
			&cli.IntFlag{Name: "hscale", Usage: "Horizontal display scaling", Value: 1},
			&cli.IntFlag{Name: "vscale", Usage: "Vertical display scaling", Value: 1},
			&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Usage: "low, medium or lossless", Value: "lossless"},
			&cli.BoolFlag{Name: "no-color-mapping", Usage: "Never store frames as color-mapped"},
			verboseFlag(),
		},
		Action: runEncode,
	}
}

func runEncode(_ context.Context, c *cli.Command) error {
	images := c.Args().Slice()
	if len(images) == 0 {
		return fmt.Errorf("%s: at least one IMAGE is required", c.Name)
	}

	quality, ok := format.ParseQuality(c.String("quality"))
	if !ok {
		return fmt.Errorf("unknown quality %q", c.String("quality"))
	}

	width, err := uintFlag(c, "width", math.MaxUint16)
	if err != nil {
		return err
	}
	height, err := uintFlag(c, "height", math.MaxUint16)
	if err != nil {
		return err
	}
	fps, err := uintFlag(c, "fps", math.MaxUint8)
	if err != nil {
		return err
	}
	hScale, err := uintFlag(c, "hscale", math.MaxUint8)
	if err != nil {
		return err
	}
	vScale, err := uintFlag(c, "vscale", math.MaxUint8)
	if err != nil {
		return err
	}

	first, err := imaging.Open(images[0])
	if err != nil {
		return err
	}
	if width == 0 {
		width = int64(first.Bounds().Dx())
	}
	if height == 0 {
		height = int64(first.Bounds().Dy())
	}
	if width > math.MaxUint16 || height > math.MaxUint16 {
		return fmt.Errorf("%s is %dx%d, larger than a DUM frame; set --width and --height", images[0], width, height)
	}

	header := section.NewHeader(uint8(fps), uint16(width), uint16(height), //nolint:gosec
		uint8(hScale), uint8(vScale), uint32(len(images))) //nolint:gosec

	enc, err := dum.Create(c.String("out"), *header, encoderOptions(c,
		stream.WithQuality(quality),
		stream.WithColorMapping(!c.Bool("no-color-mapping")),
	)...)
	if err != nil {
		return err
	}

	for i, path := range images {
		img := first
		if i > 0 {
			if img, err = imaging.Open(path); err != nil {
				_ = enc.Close()
				return err
			}
		}

		if _, err := enc.WriteFrame(fitFrame(img, int(width), int(height))); err != nil {
			_ = enc.Close()
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	stats := enc.Stats()
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s: %d frames, %d bytes\n", c.String("out"), stats.Frames, stats.Bytes)
	for _, ft := range []format.FrameType{
		format.FrameRaw, format.FrameColorMapped, format.FrameQuantized16, format.FrameQuantized8, format.FrameRepeated,
	} {
		if n := stats.ByType[ft]; n > 0 {
			fmt.Fprintf(stdout, "  %-12s %d\n", ft, n)
		}
	}

	return nil
}

// fitFrame scales and center-crops img to width×height.
func fitFrame(img image.Image, width, height int) pixel.Frame {
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		img = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	}

	return pixel.FrameFromImage(img)
}
