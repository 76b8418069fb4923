package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/compression"
	"github.com/starfederation/nbt-go/interop"
)

type convertCmd struct {
	From           string `help:"Input format: nbt, json, yaml or cbor. Guessed from the file extension when empty."`
	To             string `help:"Output format: nbt, json, yaml or cbor. Guessed from the file extension when empty."`
	OutCompression string `help:"Compression of tag output. Defaults to --compression."`
	Input          string `arg:"" help:"Input file, or - for stdin."`
	Output         string `arg:"" help:"Output file, or - for stdout." default:"-"`
}

var formats = []string{"nbt", "json", "yaml", "cbor"}

// formatOf resolves an explicit format name or guesses one from path.
func formatOf(name, path, fallback string) (string, error) {
	if name == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".jsonc":
			return "json", nil
		case ".yaml", ".yml":
			return "yaml", nil
		case ".cbor":
			return "cbor", nil
		case ".nbt", ".dat":
			return "nbt", nil
		}
		return fallback, nil
	}
	name = strings.ToLower(name)
	for _, f := range formats {
		if f == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, want one of %s", name, strings.Join(formats, ", "))
}

func (c *convertCmd) Run(e *env) error {
	from, err := formatOf(c.From, c.Input, "nbt")
	if err != nil {
		return err
	}
	to, err := formatOf(c.To, c.Output, "json")
	if err != nil {
		return err
	}
	outStrategy := e.strategy
	if c.OutCompression != "" {
		if outStrategy, err = compression.ByName(c.OutCompression); err != nil {
			return err
		}
	}

	src, err := e.openInput(c.Input)
	if err != nil {
		return err
	}
	tag, err := e.decode(src, from)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.Input, err)
	}

	dst, err := e.createOutput(c.Output)
	if err != nil {
		return err
	}
	if to == "nbt" {
		return e.codec.WriteTag(dst, tag, outStrategy)
	}
	data, err := encodeText(tag, to)
	if err != nil {
		dst.Close()
		return err
	}
	if _, err := dst.Write(data); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// decode reads one tree in format from src and closes src.
func (e *env) decode(src io.ReadCloser, format string) (nbt.Tag, error) {
	if format == "nbt" {
		return e.codec.ReadTag(src, e.strategy)
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return interop.FromJSON(data)
	case "yaml":
		return interop.FromYAML(data)
	}
	return interop.FromCBOR(data)
}

func encodeText(tag nbt.Tag, format string) ([]byte, error) {
	switch format {
	case "json":
		s, err := interop.ToJSON(tag)
		if err != nil {
			return nil, err
		}
		return append([]byte(s), '\n'), nil
	case "yaml":
		return interop.ToYAML(tag)
	}
	return interop.ToCBOR(tag)
}
