package locale

import (
	"embed"
	"fmt"
	"strings"

	"github.com/cloudfoundry-attic/jibber_jabber"
	"github.com/flytam/filenamify"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Strmap holds template data for a message.
type Strmap map[string]interface{}

//go:embed *.yaml
var localesFS embed.FS

var available = []language.Tag{language.English, language.Chinese}

// Translator renders the console and bundle strings of one language.
type Translator struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// New creates a Translator for lang. An empty lang falls back to the
// system language, and anything unknown ends up as English.
func New(lang string) (*Translator, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	for _, tag := range available {
		if _, err := bundle.LoadMessageFileFS(localesFS, fmt.Sprintf("%s.yaml", tag.String())); err != nil {
			return nil, fmt.Errorf("failed to load %s messages: %w", tag, err)
		}
	}

	requested := strings.TrimSpace(lang)
	if requested == "" {
		requested = detect()
	}

	tag := language.English
	if requested != "" {
		parsed, err := language.Parse(requested)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
		_, index, _ := language.NewMatcher(available).Match(parsed)
		tag = available[index]
	}

	return &Translator{
		tag:       tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
	}, nil
}

func detect() string {
	name, err := jibber_jabber.DetectLanguage()
	if err != nil {
		return ""
	}
	return name
}

// Tag returns the language that was picked
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// Loc renders the message id
func (t *Translator) Loc(id string, tmpl Strmap) string {
	s, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: tmpl,
	})
	if err != nil {
		return fmt.Sprintf("failed to translate! %s", id)
	}
	return s
}

// BundleFolderName returns the user facing folder name of the bundle. An
// explicit override wins over the translated default. The result is safe
// to use as a single path element.
func (t *Translator) BundleFolderName(override string) string {
	name := strings.TrimSpace(override)
	if name == "" {
		name = t.Loc("bundle_folder_name", nil)
	}

	safe, err := filenamify.FilenamifyV2(name)
	if err != nil || strings.TrimSpace(safe) == "" {
		return ""
	}
	return safe
}
