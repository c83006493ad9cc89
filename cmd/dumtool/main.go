// Command dumtool inspects, creates and converts DUM video files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum/stream"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dumtool: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "dumtool",
		Usage: "Inspect, create and convert DUM video files",
		Commands: []*cli.Command{
			infoCommand(),
			encodeCommand(),
			snapshotCommand(),
			sampleCommand(),
			packCommand(),
			unpackCommand(),
		},
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Log per-frame records to stderr",
		Aliases: []string{"v"},
	}
}

func encoderOptions(c *cli.Command, opts ...stream.EncoderOption) []stream.EncoderOption {
	return append(opts, stream.WithVerbose(c.Bool("verbose")))
}

func decoderOptions(c *cli.Command) []stream.DecoderOption {
	return []stream.DecoderOption{stream.WithDecoderVerbose(c.Bool("verbose"))}
}

// args returns exactly n positional arguments.
func args(c *cli.Command, names ...string) ([]string, error) {
	got := c.Args().Slice()
	if len(got) != len(names) {
		return nil, fmt.Errorf("%s: expected arguments %v, got %d", c.Name, names, len(got))
	}

	return got, nil
}

// uintFlag reads a non-negative integer flag and checks it against limit.
func uintFlag(c *cli.Command, name string, limit int64) (int64, error) {
	v := c.Int(name)
	if v < 0 || v > limit {
		return 0, fmt.Errorf("--%s must be in [0, %d], got %d", name, limit, v)
	}

	return v, nil
}
