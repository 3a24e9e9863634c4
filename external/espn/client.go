package espn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/pickemlabs/confidence-pool/internal/domain/game"
	"github.com/pickemlabs/confidence-pool/internal/platform/logging"
	"github.com/pickemlabs/confidence-pool/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

var errScoreboardTransient = crerr.New("scoreboard transient failure")

type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches NFL scoreboard data. Responses are public and unauthenticated;
// retries cover transient upstream failures and a circuit breaker sheds load
// when the API degrades.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	timeout        time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	client := &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		baseURL:    baseURL,
		maxRetries: maxRetries,
		logger:     logger,
		timeout:    timeout,
	}
	if cfg.CircuitBreaker.Enabled {
		breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
		client.breaker = resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq)
		client.circuitEnabled = true
	}
	return client
}

// Scoreboard is the subset of the scoreboard response the engine consumes.
type Scoreboard struct {
	Events []Event `json:"events"`
	Raw    []byte  `json:"-"`
}

type Event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []Competition `json:"competitions"`
	Status       EventStatus   `json:"status"`
}

type Competition struct {
	Competitors []Competitor `json:"competitors"`
}

type Competitor struct {
	HomeAway string         `json:"homeAway"`
	Score    string         `json:"score"`
	Winner   *bool          `json:"winner"`
	Team     CompetitorTeam `json:"team"`
}

type CompetitorTeam struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
}

type EventStatus struct {
	Period       int        `json:"period"`
	DisplayClock string     `json:"displayClock"`
	Type         StatusType `json:"type"`
}

type StatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

// FetchScoreboard retrieves one week's games. Concurrent calls for the same
// scope collapse into one upstream request.
func (c *Client) FetchScoreboard(ctx context.Context, season, seasonType, week int) (Scoreboard, error) {
	key := fmt.Sprintf("espn:scoreboard:%d:%d:%d", season, seasonType, week)
	value, err, _ := c.flight.Do(key, func() (any, error) {
		return c.fetchScoreboardOnce(ctx, season, seasonType, week)
	})
	if err != nil {
		return Scoreboard{}, err
	}

	board, ok := value.(Scoreboard)
	if !ok {
		return Scoreboard{}, fmt.Errorf("unexpected scoreboard type %T", value)
	}
	return board, nil
}

func (c *Client) fetchScoreboardOnce(ctx context.Context, season, seasonType, week int) (Scoreboard, error) {
	url := fmt.Sprintf("%s/scoreboard?dates=%d&seasontype=%d&week=%d", c.baseURL, season, seasonType, week)

	body, err := c.doWithRetry(ctx, url)
	if err != nil {
		return Scoreboard{}, err
	}

	var board Scoreboard
	if err := sonic.Unmarshal(body, &board); err != nil {
		return Scoreboard{}, fmt.Errorf("decode scoreboard response: %w", err)
	}
	board.Raw = body
	return board, nil
}

func (c *Client) doWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !crerr.Is(err, errScoreboardTransient) {
			return nil, err
		}
		c.logger.WarnContext(ctx, "scoreboard request retry", "url", url, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "scoreboard circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.Mark(err, errScoreboardTransient)
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		if c.circuitEnabled {
			c.breaker.RecordFailure()
		}
		return nil, crerr.Mark(fmt.Errorf("scoreboard request: %w", err), errScoreboardTransient)
	}

	status := resp.StatusCode()
	if status >= 500 || status == fasthttp.StatusTooManyRequests {
		if c.circuitEnabled {
			c.breaker.RecordFailure()
		}
		return nil, crerr.Mark(fmt.Errorf("scoreboard status %d", status), errScoreboardTransient)
	}
	if c.circuitEnabled {
		c.breaker.RecordSuccess()
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("scoreboard status %d", status)
	}

	return append([]byte(nil), resp.Body()...), nil
}

// MapEvents converts scoreboard events into games. A completed game with no
// flagged winning competitor is a tie and keeps a nil winner.
func MapEvents(board Scoreboard, season, seasonType, week int) []game.Game {
	games := make([]game.Game, 0, len(board.Events))
	for _, ev := range board.Events {
		if len(ev.Competitions) == 0 {
			continue
		}

		g := game.Game{
			ID:         ev.ID,
			Season:     season,
			SeasonType: seasonType,
			Week:       week,
			Status:     mapStatus(ev.Status),
			Clock:      ev.Status.DisplayClock,
		}
		if ev.Status.Period > 0 {
			period := ev.Status.Period
			g.Quarter = &period
		}
		if kickoff, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			g.KickoffAt = kickoff
		}

		for _, comp := range ev.Competitions[0].Competitors {
			scoreValue, scoreErr := strconv.Atoi(strings.TrimSpace(comp.Score))
			name := comp.Team.DisplayName

			switch comp.HomeAway {
			case "home":
				g.HomeTeam = name
				if scoreErr == nil {
					v := scoreValue
					g.HomeScore = &v
				}
			case "away":
				g.AwayTeam = name
				if scoreErr == nil {
					v := scoreValue
					g.AwayScore = &v
				}
			}

			if comp.Winner != nil && *comp.Winner && game.IsFinishedStatus(g.Status) {
				winnerName := name
				g.Winner = &winnerName
			}
		}

		games = append(games, g)
	}
	return games
}

func mapStatus(status EventStatus) string {
	switch strings.ToLower(strings.TrimSpace(status.Type.State)) {
	case "pre":
		return game.StatusScheduled
	case "in":
		return game.StatusInProgress
	case "post":
		name := strings.ToUpper(strings.TrimSpace(status.Type.Name))
		if strings.Contains(name, "CANCELED") || strings.Contains(name, "CANCELLED") {
			return game.StatusCancelled
		}
		if strings.Contains(name, "POSTPONED") {
			return game.StatusCancelled
		}
		return game.StatusFinal
	default:
		return game.NormalizeStatus(status.Type.Name)
	}
}
