package buildlog

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// DirName is the directory below the project root holding run logs.
const DirName = "build_logs"

// RenderName renders a log file name template. The template sees .Time and
// every sprig function.
func RenderName(tmpl string, now time.Time) (string, error) {
	t, err := template.New("log-name").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse log name template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Time time.Time }{Time: now}); err != nil {
		return "", fmt.Errorf("failed to render log name template: %w", err)
	}

	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", fmt.Errorf("log name template %q rendered an empty name", tmpl)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("log name %q must not contain path separators", name)
	}

	return name, nil
}
