// Package main runs one batch matching pass: load a project's candidate
// talents, rank them, and persist snapshots plus interaction logs under a
// single match run id.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sponto/ses-match/internal/adapter/httpserver"
	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
	"github.com/sponto/ses-match/internal/config"
	"github.com/sponto/ses-match/internal/matchrun"
	"github.com/sponto/ses-match/internal/observability"
)

func main() {
	_ = godotenv.Load()

	projectID := flag.Int64("project-id", 0, "projects_enum project_code to match against")
	talentLimit := flag.Int64("talent-limit", 500, "maximum talents to consider")
	variant := flag.String("variant", "", "A/B variant label recorded on interaction logs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg, "ses-match-runner")
	slog.SetDefault(logger)
	observability.InitMetrics()

	if *projectID == 0 {
		slog.Error("--project-id is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	projects := postgres.NewProjectRepo(pool)
	talents := postgres.NewTalentRepo(pool)

	project, err := projects.GetForMatching(ctx, *projectID)
	if err != nil {
		slog.Error("project load failed", slog.Int64("project_id", *projectID), slog.Any("error", err))
		os.Exit(1)
	}

	candidates, err := talents.ListActive(ctx, *talentLimit)
	if err != nil {
		slog.Error("talent load failed", slog.Any("error", err))
		os.Exit(1)
	}

	runner := matchrun.NewRunnerFromEnv().WithEngineVersion(httpserver.EngineVersion)
	if cfg.MatchRuleVersion != "" {
		runner = runner.WithConfigVersion(cfg.MatchRuleVersion)
	}
	if *variant != "" {
		runner = runner.WithVariant(*variant)
	}

	if observability.MatchRuns != nil {
		observability.MatchRuns.Inc()
	}

	err = runner.Persist(ctx,
		postgres.NewMatchResultRepo(pool),
		postgres.NewInteractionLogRepo(pool),
		project, candidates)
	if err != nil {
		slog.Error("match run failed", slog.Any("error", err))
		os.Exit(1)
	}

	ranked := runner.RankTalents(project, candidates)
	if observability.MatchCandidates != nil {
		observability.MatchCandidates.Observe(float64(len(ranked)))
	}

	name := ""
	if project.ProjectName != nil {
		name = *project.ProjectName
	}
	slog.Info("match run complete",
		slog.String("match_run_id", runner.MatchRunID()),
		slog.Int64("project_id", *projectID),
		slog.String("project", name),
		slog.Int("candidates", len(ranked)),
	)
}
