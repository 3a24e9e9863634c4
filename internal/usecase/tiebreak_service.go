package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/domain/pool"
	"github.com/pickemlabs/confidence-pool/internal/domain/tiebreak"
)

// TieCandidate is one tied top scorer enriched with the auxiliary data the
// comparators consult.
type TieCandidate struct {
	ParticipantScore
	SeasonPoints       int
	SeasonCorrectPicks int
	SeasonTotalPicks   int
	LastWeekPoints     int
	WeeksWon           int
	Answer             *float64
}

// TieBreakOutcome carries the resolved order plus how the winner was decided.
type TieBreakOutcome struct {
	Ordered      []TieCandidate
	Used         bool
	TargetAnswer *float64
	WinnerAnswer *float64
	Difference   *float64
}

// RandomFallbackPolicy orders candidates when every tie-break criterion is
// exhausted. The production default shuffles, preserving the original
// system's documented non-determinism; ParticipantIDFallback is the
// deterministic alternative.
type RandomFallbackPolicy interface {
	Order(candidates []TieCandidate) []TieCandidate
}

type ShuffleFallback struct{}

func (ShuffleFallback) Order(candidates []TieCandidate) []TieCandidate {
	out := append([]TieCandidate(nil), candidates...)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

type ParticipantIDFallback struct{}

func (ParticipantIDFallback) Order(candidates []TieCandidate) []TieCandidate {
	out := append([]TieCandidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// TieResolver produces a strict ordering over tied top scorers. Weekly ties
// use the pool's single configured method; period and season ties use the
// weeks-won cascade.
type TieResolver struct {
	scoreService *ScoreService
	tiebreakRepo tiebreak.Repository
	fallback     RandomFallbackPolicy
}

func NewTieResolver(scoreService *ScoreService, tiebreakRepo tiebreak.Repository, fallback RandomFallbackPolicy) *TieResolver {
	if fallback == nil {
		fallback = ShuffleFallback{}
	}
	return &TieResolver{
		scoreService: scoreService,
		tiebreakRepo: tiebreakRepo,
		fallback:     fallback,
	}
}

// ResolveWeekly orders weekly tied candidates by the pool's configured
// method. Callers decide beforehand whether the week breaks ties at all;
// normal pools outside period-ending weeks record co-winners instead.
func (r *TieResolver) ResolveWeekly(ctx context.Context, p pool.Pool, candidates []TieCandidate, season, seasonType, week int) (TieBreakOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TieResolver.ResolveWeekly")
	defer span.End()

	if len(candidates) == 0 {
		return TieBreakOutcome{}, fmt.Errorf("%w: no tie candidates", ErrInvalidInput)
	}
	if len(candidates) == 1 {
		return TieBreakOutcome{Ordered: candidates}, nil
	}

	enriched, err := r.enrichWeekly(ctx, p, candidates, season, seasonType, week)
	if err != nil {
		return TieBreakOutcome{}, err
	}

	switch p.TieBreakMethod {
	case pool.TieBreakTotalPoints:
		return orderBy(enriched, r.fallback, func(c TieCandidate) float64 { return float64(c.SeasonPoints) }), nil
	case pool.TieBreakCorrectPicks:
		return orderBy(enriched, r.fallback, func(c TieCandidate) float64 { return float64(c.SeasonCorrectPicks) }), nil
	case pool.TieBreakAccuracy:
		return orderBy(enriched, r.fallback, func(c TieCandidate) float64 {
			if c.SeasonTotalPicks == 0 {
				return 0
			}
			return float64(c.SeasonCorrectPicks) / float64(c.SeasonTotalPicks)
		}), nil
	case pool.TieBreakLastWeek:
		return orderBy(enriched, r.fallback, func(c TieCandidate) float64 { return float64(c.LastWeekPoints) }), nil
	case pool.TieBreakCustom:
		if p.TieBreakerAnswer == nil {
			// Missing pool target degrades to the fallback order rather
			// than failing the whole computation.
			return TieBreakOutcome{Ordered: r.fallback.Order(enriched), Used: true}, nil
		}
		return orderByDistance(enriched, *p.TieBreakerAnswer, r.fallback), nil
	default:
		return TieBreakOutcome{}, fmt.Errorf("%w: tie-break method %q", ErrInvalidInput, p.TieBreakMethod)
	}
}

// ResolvePeriod orders period or season tied candidates: weeks won first,
// then the numeric answer for the scope's last week, then for the final
// quarter the Super Bowl answer, then the fallback policy.
func (r *TieResolver) ResolvePeriod(ctx context.Context, p pool.Pool, candidates []TieCandidate, season, lastWeek int, finalQuarter bool) (TieBreakOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TieResolver.ResolvePeriod")
	defer span.End()

	if len(candidates) == 0 {
		return TieBreakOutcome{}, fmt.Errorf("%w: no tie candidates", ErrInvalidInput)
	}
	if len(candidates) == 1 {
		return TieBreakOutcome{Ordered: candidates}, nil
	}

	byWeeksWon := orderBy(candidates, nil, func(c TieCandidate) float64 { return float64(c.WeeksWon) })
	if decided(byWeeksWon.Ordered, func(c TieCandidate) float64 { return float64(c.WeeksWon) }) {
		byWeeksWon.Used = true
		return byWeeksWon, nil
	}
	still := leaders(byWeeksWon.Ordered, func(c TieCandidate) float64 { return float64(c.WeeksWon) })

	if p.TieBreakerAnswer != nil {
		withAnswers, err := r.attachAnswers(ctx, p.ID, still, season, game.SeasonTypeRegular, lastWeek)
		if err != nil {
			return TieBreakOutcome{}, err
		}
		outcome := orderByDistance(withAnswers, *p.TieBreakerAnswer, nil)
		if decidedByDistance(outcome.Ordered, *p.TieBreakerAnswer) {
			outcome.Ordered = mergeTail(outcome.Ordered, byWeeksWon.Ordered)
			return outcome, nil
		}
		still = leadersByDistance(outcome.Ordered, *p.TieBreakerAnswer)
	}

	if finalQuarter && p.TieBreakerAnswer != nil {
		withAnswers, err := r.attachAnswers(ctx, p.ID, still, season, game.SuperBowlSeasonType, game.SuperBowlWeek)
		if err != nil {
			return TieBreakOutcome{}, err
		}
		outcome := orderByDistance(withAnswers, *p.TieBreakerAnswer, nil)
		if decidedByDistance(outcome.Ordered, *p.TieBreakerAnswer) {
			outcome.Ordered = mergeTail(outcome.Ordered, byWeeksWon.Ordered)
			return outcome, nil
		}
		still = leadersByDistance(outcome.Ordered, *p.TieBreakerAnswer)
	}

	ordered := mergeTail(r.fallback.Order(still), byWeeksWon.Ordered)
	return TieBreakOutcome{Ordered: ordered, Used: true}, nil
}

func (r *TieResolver) enrichWeekly(ctx context.Context, p pool.Pool, candidates []TieCandidate, season, seasonType, week int) ([]TieCandidate, error) {
	out := append([]TieCandidate(nil), candidates...)

	switch p.TieBreakMethod {
	case pool.TieBreakTotalPoints, pool.TieBreakCorrectPicks, pool.TieBreakAccuracy:
		seasonToDate, err := r.scoreService.AggregateRange(ctx, p.ID, season, seasonType, 1, week)
		if err != nil {
			return nil, fmt.Errorf("aggregate season to date for tie-break: %w", err)
		}
		byID := make(map[string]RangeScore, len(seasonToDate))
		for _, rs := range seasonToDate {
			byID[rs.ParticipantID] = rs
		}
		for i := range out {
			rs := byID[out[i].ParticipantID]
			out[i].SeasonPoints = rs.TotalPoints
			out[i].SeasonCorrectPicks = rs.TotalCorrectPicks
			out[i].SeasonTotalPicks = rs.TotalPicks
		}
	case pool.TieBreakLastWeek:
		if week <= 1 {
			return out, nil
		}
		lastWeek, err := r.scoreService.AggregateWeek(ctx, p.ID, season, seasonType, week-1)
		if err != nil {
			return nil, fmt.Errorf("aggregate last week for tie-break: %w", err)
		}
		byID := make(map[string]int, len(lastWeek))
		for _, ps := range lastWeek {
			byID[ps.ParticipantID] = ps.Points
		}
		for i := range out {
			out[i].LastWeekPoints = byID[out[i].ParticipantID]
		}
	case pool.TieBreakCustom:
		return r.attachAnswers(ctx, p.ID, out, season, seasonType, week)
	}

	return out, nil
}

func (r *TieResolver) attachAnswers(ctx context.Context, poolID string, candidates []TieCandidate, season, seasonType, week int) ([]TieCandidate, error) {
	answers, err := r.tiebreakRepo.ListByPoolWeek(ctx, poolID, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("list tie-breaker answers: %w", err)
	}
	byID := make(map[string]float64, len(answers))
	for _, a := range answers {
		byID[a.ParticipantID] = a.Answer
	}

	out := append([]TieCandidate(nil), candidates...)
	for i := range out {
		out[i].Answer = nil
		if v, ok := byID[out[i].ParticipantID]; ok {
			answer := v
			out[i].Answer = &answer
		}
	}
	return out, nil
}

// orderBy sorts descending by the criterion. When the fallback is non-nil and
// the leading candidates remain equal, the fallback breaks the head order.
func orderBy(candidates []TieCandidate, fallback RandomFallbackPolicy, criterion func(TieCandidate) float64) TieBreakOutcome {
	out := append([]TieCandidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return criterion(out[i]) > criterion(out[j])
	})

	if fallback != nil && !decided(out, criterion) {
		head := leaders(out, criterion)
		out = mergeTail(fallback.Order(head), out)
	}

	return TieBreakOutcome{Ordered: out, Used: true}
}

// orderByDistance sorts ascending by absolute difference from the target. A
// candidate without an answer carries an infinite difference: it loses every
// comparison but stays in the ranked list.
func orderByDistance(candidates []TieCandidate, target float64, fallback RandomFallbackPolicy) TieBreakOutcome {
	out := append([]TieCandidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return answerDistance(out[i], target) < answerDistance(out[j], target)
	})

	if fallback != nil && !decidedByDistance(out, target) {
		head := leadersByDistance(out, target)
		out = mergeTail(fallback.Order(head), out)
	}

	outcome := TieBreakOutcome{Ordered: out, Used: true, TargetAnswer: &target}
	if len(out) > 0 && out[0].Answer != nil {
		diff := math.Abs(*out[0].Answer - target)
		outcome.WinnerAnswer = out[0].Answer
		outcome.Difference = &diff
	}
	return outcome
}

func answerDistance(c TieCandidate, target float64) float64 {
	if c.Answer == nil {
		return math.Inf(1)
	}
	return math.Abs(*c.Answer - target)
}

func decided(ordered []TieCandidate, criterion func(TieCandidate) float64) bool {
	if len(ordered) < 2 {
		return true
	}
	return criterion(ordered[0]) != criterion(ordered[1])
}

func decidedByDistance(ordered []TieCandidate, target float64) bool {
	if len(ordered) < 2 {
		return true
	}
	return answerDistance(ordered[0], target) != answerDistance(ordered[1], target)
}

func leaders(ordered []TieCandidate, criterion func(TieCandidate) float64) []TieCandidate {
	if len(ordered) == 0 {
		return nil
	}
	top := criterion(ordered[0])
	head := make([]TieCandidate, 0, len(ordered))
	for _, c := range ordered {
		if criterion(c) != top {
			break
		}
		head = append(head, c)
	}
	return head
}

func leadersByDistance(ordered []TieCandidate, target float64) []TieCandidate {
	if len(ordered) == 0 {
		return nil
	}
	top := answerDistance(ordered[0], target)
	head := make([]TieCandidate, 0, len(ordered))
	for _, c := range ordered {
		if answerDistance(c, target) != top {
			break
		}
		head = append(head, c)
	}
	return head
}

// mergeTail keeps the re-ordered head and appends everyone else from the
// original order, preserving a total ordering over all candidates.
func mergeTail(head, all []TieCandidate) []TieCandidate {
	inHead := make(map[string]struct{}, len(head))
	for _, c := range head {
		inHead[c.ParticipantID] = struct{}{}
	}
	out := append([]TieCandidate(nil), head...)
	for _, c := range all {
		if _, ok := inHead[c.ParticipantID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}
