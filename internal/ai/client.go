package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// Fallback texts returned instead of errors.
const (
	DescribeNoKey = "API Key missing. Please configure your environment."
	DescribeEmpty = "Could not generate description."
	DescribeError = "An error occurred while generating the description."

	MatchNoKey = "Clé API manquante."
	MatchEmpty = "Erreur d'analyse."
	MatchError = "Impossible de calculer la compatibilité."
)

// Match is a compatibility verdict. Score is always within [0,100] and
// Reason is never empty.
type Match struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

var errBadMatch = errors.New("match response out of contract")

// Client wraps a Generator with the two prompts of the application. A nil
// Generator means no API key was configured.
type Client struct {
	gen Generator
	log *zap.Logger
}

func NewClient(gen Generator, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{gen: gen, log: log}
}

// Enabled reports whether a model is configured.
func (c *Client) Enabled() bool { return c.gen != nil }

// Describe writes a French ad text for the listing draft.
func (c *Client) Describe(ctx context.Context, draft model.Annonce) string {
	if c.gen == nil {
		return DescribeNoKey
	}
	text, err := c.gen.Generate(ctx, DescribePrompt(draft), false)
	if err != nil {
		c.log.Warn("describe failed", zap.Error(err))
		return DescribeError
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return DescribeEmpty
	}
	return text
}

// MatchScore rates how well a listing suits a roommate profile.
func (c *Client) MatchScore(ctx context.Context, description string, p model.Profile) Match {
	if c.gen == nil {
		return Match{Score: 0, Reason: MatchNoKey}
	}
	text, err := c.gen.Generate(ctx, MatchPrompt(description, p), true)
	if err != nil {
		c.log.Warn("match failed", zap.Error(err))
		return Match{Score: 0, Reason: MatchError}
	}
	if strings.TrimSpace(text) == "" {
		return Match{Score: 0, Reason: MatchEmpty}
	}
	m, err := parseMatch(text)
	if err != nil {
		c.log.Warn("match response rejected", zap.Error(err), zap.String("raw", text))
		return Match{Score: 0, Reason: MatchError}
	}
	return m
}

func parseMatch(text string) (Match, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var raw struct {
		Score  *float64 `json:"score"`
		Reason string   `json:"reason"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return Match{}, err
	}
	if raw.Score == nil || math.IsNaN(*raw.Score) || *raw.Score < 0 || *raw.Score > 100 {
		return Match{}, errBadMatch
	}
	reason := strings.TrimSpace(raw.Reason)
	if reason == "" {
		return Match{}, errBadMatch
	}
	return Match{Score: int(math.Round(*raw.Score)), Reason: reason}, nil
}
