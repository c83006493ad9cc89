package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print the header and every frame record of a DUM file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "digest",
				Usage: "Decode every frame and print its xxHash64 digest",
			},
			verboseFlag(),
		},
		Action: runInfo,
	}
}

func runInfo(_ context.Context, c *cli.Command) error {
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
	fmt.Fprintln(stdout, header.String())

	if c.Bool("digest") {
		for frame, err := range dec.Frames() {
			if err != nil {
				return err
			}

			partial := ""
			if frame.Partial() {
				partial = fmt.Sprintf(" partial: %v", frame.Warning)
			}
			fmt.Fprintf(stdout, "%6d %-12s %016x%s\n", frame.Index, frame.Type, dum.FrameDigest(frame.Pixels), partial)
		}
		fmt.Fprintf(stdout, "Decoded all %d frames.\n", header.FrameCount)

		return nil
	}

	for i := range int(header.FrameCount) {
		frameType, size, err := dec.SkipFrame()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%6d %-12s %dB\n", i, frameType, size)
	}
	fmt.Fprintf(stdout, "Seeked through all %d frames.\n", header.FrameCount)

	return nil
}
