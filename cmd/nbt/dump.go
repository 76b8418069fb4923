package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	nbt "github.com/starfederation/nbt-go"
)

type dumpCmd struct {
	Path string `arg:"" help:"Tag file to print, or - for stdin." default:"-"`
}

func (c *dumpCmd) Run(e *env) error {
	src, err := e.openInput(c.Path)
	if err != nil {
		return err
	}
	tag, err := e.codec.ReadTag(src, e.strategy)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.Path, err)
	}
	var sb strings.Builder
	writeTree(&sb, "", tag, 0)
	_, err = io.WriteString(e.stdout, sb.String())
	return err
}

// writeTree prints t and its children one per line, indented two spaces per
// level.
func writeTree(sb *strings.Builder, label string, t nbt.Tag, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if label != "" {
		sb.WriteString(label)
		sb.WriteString(": ")
	}
	sb.WriteString(t.Type().Name())

	switch v := t.(type) {
	case *nbt.Compound:
		fmt.Fprintf(sb, " (%d entries)\n", v.Len())
		for k, item := range v.All() {
			writeTree(sb, strconv.Quote(k), item, depth+1)
		}
	case *nbt.List:
		fmt.Fprintf(sb, "<%s> (%d)\n", v.ElementType().Name(), v.Len())
		for i, item := range v.All() {
			writeTree(sb, "["+strconv.Itoa(i)+"]", item, depth+1)
		}
	case *nbt.Set:
		fmt.Fprintf(sb, "<%s> (%d)\n", v.ElementType().Name(), v.Len())
		for item := range v.All() {
			writeTree(sb, "-", item, depth+1)
		}
	case nbt.EmptyTag:
		sb.WriteByte('\n')
	case nbt.String:
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(string(v)))
		sb.WriteByte('\n')
	case nbt.Char:
		sb.WriteByte(' ')
		sb.WriteString(strconv.QuoteRune(v.Rune()))
		sb.WriteByte('\n')
	case nbt.ByteArray:
		fmt.Fprintf(sb, " (%d) %x\n", len(v), []byte(v))
	default:
		fmt.Fprintf(sb, " %v\n", t.Value())
	}
}
