package main

import (
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:      "snapshot",
		Usage:     "Save one frame of a DUM file as an image, scaled for display",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output image, format from the extension", Required: true},
			&cli.IntFlag{Name: "frame", Usage: "Frame index"},
			&cli.FloatFlag{Name: "progress", Usage: "Position in the video, 0 to 1; overrides --frame"},
			&cli.BoolFlag{Name: "unscaled", Usage: "Keep the stored resolution"},
			verboseFlag(),
		},
		Action: runSnapshot,
	}
}

func runSnapshot(_ context.Context, c *cli.Command) error {
	paths, err := args(c, "FILE")
	if err != nil {
		return err
	}

	dec, err := dum.Open(paths[0], decoderOptions(c)...)
	if err != nil {
		return err
	}
	defer dec.Close()

	header, err := dec.Info()
	if err != nil {
		return err
	}

	if c.IsSet("progress") {
		_, err = dec.Seek(c.Float("progress"))
	} else {
		_, err = dec.SeekFrame(int(c.Int("frame")))
	}
	if err != nil {
		return err
	}

	frame, err := dec.ReadFrame()
	if err != nil {
		return err
	}
	if frame.Partial() {
		fmt.Fprintf(stdout, "warning: frame %d: %v\n", frame.Index, frame.Warning)
	}

	width, height := int(header.Width), int(header.Height)
	img := frame.Pixels.Image(width, height)

	outWidth, outHeight := width, height
	if !c.Bool("unscaled") {
		outWidth *= max(int(header.HScale), 1)
		outHeight *= max(int(header.VScale), 1)
	}
	if outWidth != width || outHeight != height {
		img = imaging.Resize(img, outWidth, outHeight, imaging.NearestNeighbor)
	}

	if err := imaging.Save(img, c.String("out")); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Saved frame %d (%s) as %s, %dx%d\n", frame.Index, frame.Type, c.String("out"), outWidth, outHeight)

	return nil
}
