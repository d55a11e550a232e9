// Package ingest resolves command-line inputs into the report files to
// process and watches directories for new ones.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
)

// Input is one report file to process.
type Input struct {
	Path    string
	Format  string // constants.PDF | constants.TEXT | "" when unknown
	Size    int64
	HashHex string
}

// DirStats summarizes input resolution.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

type Options struct {
	SkipHidden bool
	// Exts overrides constants.AllowedExtensions (lowercase, without '.').
	Exts map[string]struct{}
}

// Resolve expands directories, keeps explicit files as given and drops
// files whose content was already seen. Order follows the arguments, and
// directory contents are sorted.
func Resolve(ctx context.Context, paths []string, opts Options) ([]Input, DirStats, error) {
	var stats DirStats
	var out []Input
	seen := map[string]struct{}{}

	add := func(path string) error {
		in, err := describe(path)
		if err != nil {
			stats.Failed++
			return common.InputError(path, err)
		}
		if _, dup := seen[in.HashHex]; dup {
			stats.Deduplicated++
			return nil
		}
		seen[in.HashHex] = struct{}{}
		out = append(out, in)
		return nil
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return out, stats, err
		}
		fi, err := os.Stat(p)
		if err != nil {
			stats.Failed++
			return out, stats, common.InputError(p, err)
		}
		if !fi.IsDir() {
			stats.Scanned++
			stats.Matched++
			if err := add(p); err != nil {
				return out, stats, err
			}
			continue
		}
		files, dirStats, err := ScanDirectory(ctx, p, opts)
		stats.Scanned += dirStats.Scanned
		stats.Matched += dirStats.Matched
		stats.Failed += dirStats.Failed
		if err != nil {
			return out, stats, err
		}
		for _, f := range files {
			if err := add(f); err != nil {
				return out, stats, err
			}
		}
	}
	return out, stats, nil
}

func describe(path string) (Input, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Input{}, err
	}
	size, hash, err := hashFile(abs)
	if err != nil {
		return Input{}, fmt.Errorf("hash: %w", err)
	}
	return Input{
		Path:    abs,
		Format:  constants.MapExtToFormat(filepath.Ext(abs)),
		Size:    size,
		HashHex: hash,
	}, nil
}
