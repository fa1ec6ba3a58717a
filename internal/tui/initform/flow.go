package initform

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/tui"
)

// Flow asks for the settings freeze init writes to freeze.yaml.
type Flow struct {
	base  *config.Config
	in    io.Reader
	out   io.Writer
	theme *huh.Theme
}

// Result captures the answers of a completed flow.
type Result struct {
	Name          string
	Entry         string
	LocalizedName string
	Policy        models.DependencyPolicy
}

// NewFlow constructs a Flow prefilled from base.
func NewFlow(base *config.Config, in io.Reader, out io.Writer) *Flow {
	return &Flow{
		base:  base,
		in:    in,
		out:   out,
		theme: tui.NewHuhTheme(),
	}
}

// Run executes the forms sequentially; returns nil result on user abort.
func (f *Flow) Run() (*Result, error) {
	res := &Result{
		Name:          f.base.Name,
		Entry:         f.base.Entry,
		LocalizedName: f.base.LocalizedName,
		Policy:        f.base.DependencyPolicy,
	}

	if err := f.inputProject(res); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	policy, err := f.selectPolicy(res.Policy)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}
	res.Policy = policy

	return res, nil
}

// Apply returns a copy of cfg with the answers applied.
func (r *Result) Apply(cfg *config.Config) *config.Config {
	out := *cfg
	out.Name = strings.TrimSpace(r.Name)
	out.Entry = filepath.ToSlash(strings.TrimSpace(r.Entry))
	out.LocalizedName = strings.TrimSpace(r.LocalizedName)
	out.DependencyPolicy = r.Policy
	return &out
}

func (f *Flow) inputProject(res *Result) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output name").
				Description("Name of the executable and of dist/<name>.").
				Value(&res.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Entry point").
				Description("Script PyInstaller starts from, relative to the project root.").
				Value(&res.Entry).
				Validate(validateEntry),
			huh.NewInput().
				Title("Localized folder name").
				Description("Leave empty to use the name from the language catalog.").
				Value(&res.LocalizedName),
		).
			Title("Project").
			Description("Describe the application to package."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen(), tea.WithInput(f.in), tea.WithOutput(f.out))

	return form.Run()
}

func (f *Flow) selectPolicy(current models.DependencyPolicy) (models.DependencyPolicy, error) {
	policy := string(current)

	opts := []huh.Option[string]{
		huh.NewOption("fail-fast: stop at the first failed install", string(models.PolicyFailFast)),
		huh.NewOption("best-effort: warn and let PyInstaller report what is missing", string(models.PolicyBestEffort)),
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(false)
	keyMap.Select.Submit.SetKeys("enter", " ")
	keyMap.Select.Submit.SetHelp("space/enter", "continue")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(opts...).
				Value(&policy),
		).
			Title("Dependency Policy").
			Description("What a failed pip install does to the build."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen(), tea.WithInput(f.in), tea.WithOutput(f.out)).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		return "", err
	}

	return models.ParseDependencyPolicy(policy)
}

func validateName(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsAny(v, `/\:*?"<>|`) {
		return fmt.Errorf("name cannot contain path characters")
	}
	return nil
}

func validateEntry(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("entry point cannot be empty")
	}
	if filepath.IsAbs(v) || strings.HasPrefix(v, "/") || strings.HasPrefix(v, `\`) {
		return fmt.Errorf("entry point must be relative to the project root")
	}
	if !strings.HasSuffix(strings.ToLower(v), ".py") {
		return fmt.Errorf("entry point must be a .py file")
	}
	return nil
}
