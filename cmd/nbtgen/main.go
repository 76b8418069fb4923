package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
)

type cli struct {
	Dir     string `help:"Root directory to scan for Go packages." default:"."`
	Check   bool   `help:"Report stale nbt_gen.go files and fail instead of writing them."`
	Verbose bool   `short:"v" help:"Print each file written or removed."`
}

func main() {
	log.SetFlags(0)

	var args cli
	ctx := kong.Parse(&args,
		kong.Name("nbtgen"),
		kong.Description("Generate structural encode and decode methods for nbt-tagged Go structs."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

func (c *cli) Run() error {
	root, err := filepath.Abs(c.Dir)
	if err != nil {
		return err
	}
	infos, err := collectPackageInfos(root)
	if err != nil {
		return err
	}
	res, err := generate(infos, c.Check)
	if err != nil {
		return err
	}
	if c.Verbose || c.Check {
		for _, line := range res.details(root) {
			log.Print(line)
		}
	}
	log.Print(res.summary())
	if c.Check && len(res.Stale) > 0 {
		return fmt.Errorf("%d generated file(s) out of date; run nbtgen", len(res.Stale))
	}
	return nil
}

// result lists the generated files touched by one run, as absolute paths.
// In check mode nothing is touched and every difference lands in Stale.
type result struct {
	Written []string
	Removed []string
	Stale   []string
}

func generate(infos []*packageInfo, check bool) (*result, error) {
	res := &result{}
	for _, info := range infos {
		outPath := filepath.Join(info.Dir, generatedFile)
		if len(info.Structs) == 0 {
			if check {
				owned, err := ownsGeneratedFile(info.Dir)
				if err != nil {
					return nil, err
				}
				if owned {
					res.Stale = append(res.Stale, outPath)
				}
				continue
			}
			removed, err := removeGeneratedFile(info.Dir)
			if err != nil {
				return nil, err
			}
			if removed {
				res.Removed = append(res.Removed, outPath)
			}
			continue
		}

		src, err := generatePackage(info)
		if err != nil {
			return nil, err
		}
		if check {
			current, err := fileCurrent(outPath, src)
			if err != nil {
				return nil, err
			}
			if !current {
				res.Stale = append(res.Stale, outPath)
			}
			continue
		}
		changed, err := writeFileIfChanged(outPath, src)
		if err != nil {
			return nil, err
		}
		if changed {
			res.Written = append(res.Written, outPath)
		}
	}
	return res, nil
}

func (r *result) details(root string) []string {
	var lines []string
	add := func(verb string, paths []string) {
		for _, p := range paths {
			if rel, err := filepath.Rel(root, p); err == nil {
				p = rel
			}
			lines = append(lines, fmt.Sprintf("nbtgen: %s %s", verb, p))
		}
	}
	add("wrote", r.Written)
	add("removed", r.Removed)
	add("stale", r.Stale)
	return lines
}

func (r *result) summary() string {
	var parts []string
	if n := len(r.Written); n > 0 {
		parts = append(parts, fmt.Sprintf("wrote %d package(s)", n))
	}
	if n := len(r.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("removed %d", n))
	}
	if n := len(r.Stale); n > 0 {
		parts = append(parts, fmt.Sprintf("%d stale", n))
	}
	if len(parts) == 0 {
		return "nbtgen: no changes"
	}
	return "nbtgen: " + strings.Join(parts, ", ")
}
