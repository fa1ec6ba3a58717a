package freeze

import (
	"os"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/config"
)

// Options is everything that ends up on the PyInstaller command line.
type Options struct {
	Name       string
	Windowed   bool
	Paths      []string
	Data       []config.DataMapping
	CollectAll []string
	Entry      string

	// Separator joins source and destination of --add-data; it defaults
	// to the platform list separator (";" on Windows, ":" elsewhere).
	Separator string
}

// FromConfig derives Options from cfg. Data sources for which present
// returns false are left out and returned as skipped.
func FromConfig(cfg *config.Config, present func(src string) bool) (Options, []string) {
	opts := Options{
		Name:       cfg.Name,
		Windowed:   cfg.Windowed,
		Paths:      append([]string(nil), cfg.Paths...),
		CollectAll: append([]string(nil), cfg.CollectAll...),
		Entry:      cfg.Entry,
	}

	var skipped []string
	for _, d := range cfg.Data {
		if present != nil && !present(d.Src) {
			skipped = append(skipped, d.Src)
			continue
		}
		opts.Data = append(opts.Data, d)
	}

	return opts, skipped
}

// Args renders the PyInstaller arguments, without the program itself.
func Args(opts Options) []string {
	sep := opts.Separator
	if sep == "" {
		sep = string(os.PathListSeparator)
	}

	args := []string{"--noconfirm", "--name", opts.Name}
	if opts.Windowed {
		args = append(args, "--windowed")
	}
	args = append(args, "--clean")

	for _, p := range opts.Paths {
		args = append(args, "--paths", filepath.FromSlash(p))
	}
	for _, d := range opts.Data {
		args = append(args, "--add-data", filepath.FromSlash(d.Src)+sep+d.Target())
	}
	for _, lib := range opts.CollectAll {
		args = append(args, "--collect-all", lib)
	}

	return append(args, filepath.FromSlash(opts.Entry))
}
