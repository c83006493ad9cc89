package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/dum/archive"
	"github.com/arloliu/dum/format"
)

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Compress a DUM file into an archive",
		ArgsUsage: "IN OUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Usage:   "none, zstd, s2 or lz4",
				Value:   "zstd",
			},
		},
		Action: runPack,
	}
}

func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "Restore a DUM file from an archive",
		ArgsUsage: "IN OUT",
		Action:    runUnpack,
	}
}

func runPack(_ context.Context, c *cli.Command) error {
	paths, err := args(c, "IN", "OUT")
	if err != nil {
		return err
	}

	compression, ok := format.ParseCompression(c.String("compression"))
	if !ok {
		return fmt.Errorf("unknown compression %q", c.String("compression"))
	}

	src, err := os.ReadFile(paths[0])
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	stats, err := archive.Pack(&buf, src, compression)
	if err != nil {
		return fmt.Errorf("%s: %w", paths[0], err)
	}

	if err := os.WriteFile(paths[1], buf.Bytes(), 0o644); err != nil { //nolint:gosec
		return err
	}

	fmt.Fprintf(stdout, "Packed %s with %s: %d -> %d bytes (%.1f%% saved)\n",
		paths[0], stats.Compression, stats.StreamSize, stats.ArchiveSize, stats.SpaceSavings())

	return nil
}

func runUnpack(_ context.Context, c *cli.Command) error {
	paths, err := args(c, "IN", "OUT")
	if err != nil {
		return err
	}

	src, err := os.ReadFile(paths[0])
	if err != nil {
		return err
	}

	stream, compression, err := archive.Unpack(src)
	if err != nil {
		return fmt.Errorf("%s: %w", paths[0], err)
	}

	if err := os.WriteFile(paths[1], stream, 0o644); err != nil { //nolint:gosec
		return err
	}

	fmt.Fprintf(stdout, "Unpacked %s (%s): %d bytes\n", paths[0], compression, len(stream))

	return nil
}
