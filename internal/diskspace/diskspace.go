package diskspace

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
)

// FreeFunc reports the free bytes on the volume holding path.
type FreeFunc func(path string) (uint64, error)

// Free uses gopsutil to read the free space of the volume holding path.
// The parent of path is probed since path itself may not exist yet.
func Free(path string) (uint64, error) {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage of %s: %w", path, err)
	}
	return usage.Free, nil
}

// Shortage describes a volume with less free space than wanted.
type Shortage struct {
	Path string
	Free uint64
	Want uint64
}

func (s *Shortage) String() string {
	return fmt.Sprintf("only %s free on the volume of %s, at least %s recommended",
		humanize.Bytes(s.Free), s.Path, humanize.Bytes(s.Want))
}

// Check returns a Shortage when the volume of path has less than want
// bytes free. A zero want disables the check.
func Check(free FreeFunc, path string, want uint64) (*Shortage, error) {
	if want == 0 || free == nil {
		return nil, nil
	}

	n, err := free(path)
	if err != nil {
		return nil, err
	}
	if n >= want {
		return nil, nil
	}

	return &Shortage{Path: path, Free: n, Want: want}, nil
}
