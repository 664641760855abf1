package i18n

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
}

// NewTranslations builds a message bundle with the embedded English defaults
// plus any active.*.toml files found under localesPath (optional).
func NewTranslations(defaultLang, localesPath string) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	bundle.MustParseMessageFileBytes([]byte(defaultMessages), "default.en.toml")

	if localesPath != "" {
		files, err := filepath.Glob(filepath.Join(localesPath, "active.*.toml"))
		if err != nil {
			return nil, fmt.Errorf("error reading locales: %w", err)
		}
		for _, file := range files {
			if _, err := bundle.LoadMessageFile(file); err != nil {
				return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
			}
		}
	}

	return &Translations{
		bundle:   bundle,
		localize: i18n.NewLocalizer(bundle, defaultLang),
	}, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID: messageID,
		},
		PluralCount:  count,
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

var defaultMessages = `
	[app_usage]
	other = "Generate AI-assisted HTML activity digests for GitHub repositories"

	[app_description]
	other = "repodigest fetches commits, pull requests and issues for a date window, filters bot noise, categorizes and summarizes commits with an AI model, and writes one HTML report per repository."

	[generate_command_usage]
	other = "Fetch repository activity and write the HTML digests"

	[flag_repos_usage]
	other = "Comma-separated list of owner/repo slugs (overrides configuration)"

	[flag_date_usage]
	other = "End date of the reporting window, YYYY-MM-DD (defaults to today)"

	[flag_period_usage]
	other = "Window length in days (invalid values fall back to configuration)"

	[error.no_repositories]
	other = "No repositories to process. Pass --repos or set them in the configuration file"

	[error.invalid_end_date]
	other = "Invalid end date '{{.Date}}', expected YYYY-MM-DD"

	[error.output_dir]
	other = "Cannot create output directory '{{.Dir}}'"

	[error.github_token_missing]
	other = "No GitHub token configured. Set GITHUB_TOKEN or the github_token config field"

	[error.gemini_key_missing]
	other = "No Gemini API key configured. Set GEMINI_API_KEY or the gemini_api_key config field"

	[run_started]
	other = "Generating digests for {{.Count}} repositories ({{.Start}} to {{.End}})"

	[run_repo_skipped]
	other = "Skipping {{.Repo}}: fetch failed"

	[run_report_written]
	other = "Report written: {{.Path}}"

	[run_finished]
	one = "Done. {{.Count}} report generated"
	other = "Done. {{.Count}} reports generated"
	`
