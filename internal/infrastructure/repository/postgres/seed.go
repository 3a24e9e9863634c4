package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemlabs/confidence-pool/internal/infrastructure/repository/memory"
)

func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM pools WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count pools for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (public_id, name, abbreviation, logo_url)
VALUES (:public_id, :name, :abbreviation, :logo_url)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":    t.ID,
			"name":         t.Name,
			"abbreviation": t.Abbreviation,
			"logo_url":     t.LogoURL,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, p := range memory.SeedPools() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO pools (public_id, name, season, pool_type, tie_break_method, tie_breaker_question, tie_breaker_answer)
VALUES (:public_id, :name, :season, :pool_type, :tie_break_method, :tie_breaker_question, :tie_breaker_answer)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":            p.ID,
			"name":                 p.Name,
			"season":               p.Season,
			"pool_type":            string(p.Type),
			"tie_break_method":     string(p.TieBreakMethod),
			"tie_breaker_question": p.TieBreakerQuestion,
			"tie_breaker_answer":   p.TieBreakerAnswer,
		})
		if err != nil {
			return fmt.Errorf("bind seed pool %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed pool %s: %w", p.ID, err)
		}
	}

	for _, p := range memory.SeedParticipants() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO participants (public_id, pool_public_id, name, active, joined_at)
VALUES (:public_id, :pool_public_id, :name, :active, :joined_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      p.ID,
			"pool_public_id": p.PoolID,
			"name":           p.Name,
			"active":         p.Active,
			"joined_at":      p.JoinedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed participant %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed participant %s: %w", p.ID, err)
		}
	}

	for _, g := range memory.SeedGames() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO games (public_id, season, season_type, week, home_team, away_team, home_score, away_score, status, winner, kickoff_at)
VALUES (:public_id, :season, :season_type, :week, :home_team, :away_team, :home_score, :away_score, :status, :winner, :kickoff_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":   g.ID,
			"season":      g.Season,
			"season_type": g.SeasonType,
			"week":        g.Week,
			"home_team":   g.HomeTeam,
			"away_team":   g.AwayTeam,
			"home_score":  g.HomeScore,
			"away_score":  g.AwayScore,
			"status":      g.Status,
			"winner":      g.Winner,
			"kickoff_at":  g.KickoffAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed game %s query: %w", g.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
