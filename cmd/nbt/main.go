package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/compression"
)

type cli struct {
	Debug       bool   `help:"Log decoding details to stderr." env:"NBT_DEBUG"`
	Compression string `short:"c" help:"Compression of tag files: none, deflate, gzip, zip, zstd, lz4 or s2." default:"gzip" env:"NBT_COMPRESSION"`
	MaxDepth    int    `help:"Maximum nesting depth accepted when reading." default:"512"`

	Dump    dumpCmd    `cmd:"" help:"Print a tag file as an indented tree."`
	Convert convertCmd `cmd:"" help:"Convert between tag, JSON, YAML and CBOR files."`
	Sum     sumCmd     `cmd:"" help:"Print the BLAKE3 digest of a tag file's uncompressed encoding."`
}

// env carries what every command needs.
type env struct {
	codec    *nbt.Codec
	strategy compression.Strategy
	stdin    io.Reader
	stdout   io.Writer
}

func (c *cli) env(stdin io.Reader, stdout, stderr io.Writer) (*env, error) {
	strategy, err := compression.ByName(c.Compression)
	if err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return &env{
		codec:    &nbt.Codec{Logger: logger, MaxDepth: c.MaxDepth},
		strategy: strategy,
		stdin:    stdin,
		stdout:   stdout,
	}, nil
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("nbt"),
		kong.Description("Inspect, convert and digest tag files."),
		kong.UsageOnError(),
	)
	e, err := args.env(os.Stdin, os.Stdout, os.Stderr)
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(e))
}

// openInput opens path, or stdin for "-".
func (e *env) openInput(path string) (io.ReadCloser, error) {
	e.codec.Logger.Debug("open input", "path", path, "compression", e.strategy.Name())
	if path == "-" {
		return io.NopCloser(e.stdin), nil
	}
	return os.Open(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// createOutput creates path, or wraps stdout for "-".
func (e *env) createOutput(path string) (io.WriteCloser, error) {
	e.codec.Logger.Debug("create output", "path", path)
	if path == "-" {
		return nopWriteCloser{e.stdout}, nil
	}
	return os.Create(path)
}
