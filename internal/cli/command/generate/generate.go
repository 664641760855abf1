package generate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/repodigest/repodigest/internal/config"
	"github.com/repodigest/repodigest/internal/i18n"
	"github.com/repodigest/repodigest/internal/logger"
	"github.com/repodigest/repodigest/internal/orchestrator"
)

// RunnerProvider builds the orchestrator lazily, once flags are parsed and
// credentials validated. Client construction needs a context, so it cannot
// happen at factory creation time.
type RunnerProvider func(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, error)

type GenerateCommandFactory struct {
	provider RunnerProvider
}

func NewGenerateCommandFactory(provider RunnerProvider) *GenerateCommandFactory {
	return &GenerateCommandFactory{provider: provider}
}

func (f *GenerateCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   t.GetMessage("generate_command_usage", 0, nil),
		Flags:   f.createFlags(t),
		Action:  f.createAction(cfg, t),
	}
}

func (f *GenerateCommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repos",
			Aliases: []string{"r", "repositories"},
			Usage:   t.GetMessage("flag_repos_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:    "date",
			Aliases: []string{"d", "end-date"},
			Usage:   t.GetMessage("flag_date_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:    "period",
			Aliases: []string{"p"},
			Usage:   t.GetMessage("flag_period_usage", 0, nil),
		},
	}
}

func (f *GenerateCommandFactory) createAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		logger.Initialize(command.Bool("debug"), command.Bool("verbose"))

		if cfg.GitHubToken == "" {
			return fmt.Errorf("%s", t.GetMessage("error.github_token_missing", 0, nil))
		}
		if cfg.GeminiAPIKey == "" {
			return fmt.Errorf("%s", t.GetMessage("error.gemini_key_missing", 0, nil))
		}

		runner, err := f.provider(ctx, cfg)
		if err != nil {
			return err
		}

		return runner.Run(ctx, orchestrator.Params{
			Repositories: splitRepos(command.String("repos")),
			EndDate:      command.String("date"),
			PeriodDays:   parsePeriod(command.String("period")),
		})
	}
}

func splitRepos(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var repos []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			repos = append(repos, trimmed)
		}
	}
	return repos
}

// parsePeriod is lenient: anything that does not parse as a positive integer
// yields 0, which defers to the configured period.
func parsePeriod(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 0 {
		return 0
	}
	return days
}
