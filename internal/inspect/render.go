package inspect

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// RenderText writes the human readable report.
func RenderText(w io.Writer, r *Report) {
	fmt.Fprintf(w, "📂 %s\n\n", r.Root)

	fmt.Fprintln(w, "Files:")
	if len(r.Tree) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	for _, e := range r.Tree {
		fmt.Fprintf(w, "%s %s%s\n", attributes(e), e.branch, displayName(e))
	}
	fmt.Fprintln(w)

	for _, l := range r.Subdirs {
		fmt.Fprintf(w, "📁 %s/\n", l.Dir)
		if len(l.Entries) == 0 {
			fmt.Fprintln(w, "   (empty)")
		}
		for _, e := range l.Entries {
			fmt.Fprintf(w, "   %s %s\n", attributes(e), displayName(e))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "🔎 Files by extension:")
	for _, m := range r.Extensions {
		writeMatches(w, m, "none found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔎 Files by keyword:")
	for _, m := range r.Keywords {
		writeMatches(w, m, "not found")
	}
}

func writeMatches(w io.Writer, m Matches, empty string) {
	if len(m.Paths) == 0 {
		fmt.Fprintf(w, "  %s: %s\n", m.Term, empty)
		return
	}

	fmt.Fprintf(w, "  %s (%d):\n", m.Term, len(m.Paths))
	for _, p := range m.Paths {
		fmt.Fprintf(w, "    %s\n", p)
	}
}

func attributes(e Entry) string {
	size := "-"
	if !e.IsDir {
		size = humanize.Bytes(uint64(e.Size))
	}
	return fmt.Sprintf("%s %8s", e.Mode, size)
}

func displayName(e Entry) string {
	if e.IsDir {
		return e.Name + "/"
	}
	return e.Name
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
