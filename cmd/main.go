package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/repodigest/repodigest/internal/cli/command/generate"
	"github.com/repodigest/repodigest/internal/cli/registry"
	cfg "github.com/repodigest/repodigest/internal/config"
	"github.com/repodigest/repodigest/internal/i18n"
	"github.com/repodigest/repodigest/internal/infrastructure/ai/gemini"
	"github.com/repodigest/repodigest/internal/infrastructure/vcs/github"
	"github.com/repodigest/repodigest/internal/orchestrator"
	"github.com/repodigest/repodigest/internal/version"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Error initializing the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func initializeApp() (*cli.Command, error) {
	// A .env in the working directory is a convenience for local runs; its
	// absence is not an error.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	provider := func(ctx context.Context, c *cfg.Config) (*orchestrator.Orchestrator, error) {
		client, err := gemini.NewClient(ctx, c)
		if err != nil {
			return nil, err
		}
		fetcher := github.NewFetcher(c.GitHubToken, c.TeamLogins)
		return orchestrator.New(fetcher, client, c, translations), nil
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)
	if err := registerCommand.Register("generate", generate.NewGenerateCommandFactory(provider)); err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:        "repodigest",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "show progress logs",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "show debug logs with source locations",
			},
		},
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
	}, nil
}
