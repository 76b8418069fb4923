package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	nbt "github.com/starfederation/nbt-go"
	"github.com/starfederation/nbt-go/compression"
)

func testEnv(t *testing.T, compressionName string, stdin io.Reader) (*env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := cli{Compression: compressionName}
	e, err := c.env(stdin, &out, io.Discard)
	require.NoError(t, err)
	return e, &out
}

func sample() *nbt.Compound {
	return nbt.NewCompound().
		Put("name", nbt.String("x")).
		Put("n", nbt.Int(3)).
		Put("l", nbt.NewList(nbt.Byte(1)))
}

func writeSample(t *testing.T, name string, s compression.Strategy) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, nbt.WriteFile(path, sample(), s))
	return path
}

func TestDump(t *testing.T) {
	path := writeSample(t, "sample.nbt", compression.Gzip)
	e, out := testEnv(t, "gzip", nil)

	require.NoError(t, (&dumpCmd{Path: path}).Run(e))
	require.Equal(t, strings.Join([]string{
		`compound (3 entries)`,
		`  "name": string "x"`,
		`  "n": int 3`,
		`  "l": list<byte> (1)`,
		`    [0]: byte 1`,
		``,
	}, "\n"), out.String())
}

func TestDebugLogging(t *testing.T) {
	path := writeSample(t, "sample.nbt", compression.Gzip)
	var out, logs bytes.Buffer
	c := cli{Compression: "gzip", Debug: true}
	e, err := c.env(nil, &out, &logs)
	require.NoError(t, err)
	require.NoError(t, (&dumpCmd{Path: path}).Run(e))
	require.Contains(t, logs.String(), "level=DEBUG")
	require.Contains(t, logs.String(), `msg="open input"`)
	require.Contains(t, logs.String(), `msg="nbt read" type=compound compression=gzip`)

	logs.Reset()
	c.Debug = false
	e, err = c.env(nil, &out, &logs)
	require.NoError(t, err)
	require.NoError(t, (&dumpCmd{Path: path}).Run(e))
	require.Empty(t, logs.String())
}

func TestDumpWrongCompression(t *testing.T) {
	path := writeSample(t, "sample.nbt", compression.Gzip)
	e, _ := testEnv(t, "zstd", nil)
	require.Error(t, (&dumpCmd{Path: path}).Run(e))
}

func TestUnknownCompression(t *testing.T) {
	c := cli{Compression: "rar"}
	_, err := c.env(nil, io.Discard, io.Discard)
	require.ErrorIs(t, err, compression.ErrUnknownStrategy)
}

func TestConvertToJSON(t *testing.T) {
	path := writeSample(t, "sample.nbt", compression.Gzip)
	e, out := testEnv(t, "gzip", nil)

	require.NoError(t, (&convertCmd{Input: path, Output: "-"}).Run(e))
	require.Equal(t, `{"name":"x","n":3,"l":[1]}`+"\n", out.String())
}

func TestConvertFromStdin(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.nbt")
	e, _ := testEnv(t, "gzip", strings.NewReader(`{"a": 1, "b": ["x"]}`))

	cmd := &convertCmd{From: "json", OutCompression: "zstd", Input: "-", Output: outPath}
	require.NoError(t, cmd.Run(e))

	got, err := nbt.ReadFile(outPath, compression.Zstd)
	require.NoError(t, err)
	want := nbt.NewCompound().Put("a", nbt.Int(1)).Put("b", nbt.NewList(nbt.String("x")))
	require.True(t, nbt.Equal(want, got))
}

func TestConvertYAMLAndCBOR(t *testing.T) {
	path := writeSample(t, "sample.nbt", compression.None)
	dir := t.TempDir()
	e, _ := testEnv(t, "none", nil)

	yamlPath := filepath.Join(dir, "sample.yaml")
	require.NoError(t, (&convertCmd{Input: path, Output: yamlPath}).Run(e))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "name: x\n"))

	cborPath := filepath.Join(dir, "sample.cbor")
	require.NoError(t, (&convertCmd{Input: yamlPath, Output: cborPath}).Run(e))

	backPath := filepath.Join(dir, "back.nbt")
	require.NoError(t, (&convertCmd{Input: cborPath, Output: backPath}).Run(e))

	got, err := nbt.ReadFile(backPath, compression.None)
	require.NoError(t, err)
	want := nbt.NewCompound().
		Put("name", nbt.String("x")).
		Put("n", nbt.Int(3)).
		Put("l", nbt.NewList(nbt.Int(1)))
	require.True(t, nbt.Equal(want, got))
}

func TestFormatOf(t *testing.T) {
	f, err := formatOf("", "a/b.YML", "nbt")
	require.NoError(t, err)
	require.Equal(t, "yaml", f)

	f, err = formatOf("", "-", "json")
	require.NoError(t, err)
	require.Equal(t, "json", f)

	f, err = formatOf("CBOR", "x.json", "nbt")
	require.NoError(t, err)
	require.Equal(t, "cbor", f)

	_, err = formatOf("toml", "", "nbt")
	require.Error(t, err)
}

func TestSumIgnoresCompression(t *testing.T) {
	gz := writeSample(t, "a.nbt", compression.Gzip)
	zs := writeSample(t, "b.nbt", compression.Zstd)

	eg, outGz := testEnv(t, "gzip", nil)
	require.NoError(t, (&sumCmd{Paths: []string{gz}}).Run(eg))
	ez, outZs := testEnv(t, "zstd", nil)
	require.NoError(t, (&sumCmd{Paths: []string{zs}}).Run(ez))

	digestGz, _, _ := strings.Cut(outGz.String(), " ")
	digestZs, _, _ := strings.Cut(outZs.String(), " ")
	require.Len(t, digestGz, 64)
	require.Equal(t, digestGz, digestZs)

	e, _ := testEnv(t, "gzip", nil)
	require.Error(t, (&sumCmd{Paths: []string{filepath.Join(t.TempDir(), "missing")}}).Run(e))
}
