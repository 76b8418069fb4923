package main

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/starfederation/nbt-go/compression"
)

type sumCmd struct {
	Paths []string `arg:"" help:"Tag files to digest, or - for stdin." default:"-"`
}

func (c *sumCmd) Run(e *env) error {
	for _, path := range c.Paths {
		digest, err := e.sum(path)
		if err != nil {
			return fmt.Errorf("sum %s: %w", path, err)
		}
		fmt.Fprintf(e.stdout, "%s  %s\n", digest, path)
	}
	return nil
}

// sum digests the uncompressed encoding, so the same tree stored with
// different compression hashes the same.
func (e *env) sum(path string) (string, error) {
	src, err := e.openInput(path)
	if err != nil {
		return "", err
	}
	tag, err := e.codec.ReadTag(src, e.strategy)
	if err != nil {
		return "", err
	}
	raw, err := e.codec.Marshal(tag, compression.None)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
