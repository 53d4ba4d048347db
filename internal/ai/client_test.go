package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/colocetudiant/internal/model"
)

type fakeGen struct {
	text     string
	err      error
	prompt   string
	jsonMode bool
}

func (f *fakeGen) Generate(_ context.Context, prompt string, jsonMode bool) (string, error) {
	f.prompt, f.jsonMode = prompt, jsonMode
	return f.text, f.err
}

func draft() model.Annonce {
	return model.Annonce{
		TypeBien: model.PropertyAppartement, Ville: "Lyon", Surface: 18.5, Pieces: 1, Meuble: true,
		Chauffage: "Individuel", SourceEnergie: "Électrique", DPELettre: "C",
		LoyerBase: 550, Charges: 40, DateDisponibilite: "2026-09-01",
	}
}

func TestDescribe(t *testing.T) {
	gen := &fakeGen{text: "  Joli studio lumineux.  "}
	c := NewClient(gen, nil)

	assert.Equal(t, "Joli studio lumineux.", c.Describe(context.Background(), draft()))
	assert.False(t, gen.jsonMode)
	assert.Contains(t, gen.prompt, "City: Lyon")
	assert.Contains(t, gen.prompt, "Surface: 18.5 m2")
	assert.Contains(t, gen.prompt, "Furnished: Yes")
	assert.Contains(t, gen.prompt, "Heating: Individuel (Électrique)")
	assert.Contains(t, gen.prompt, "Rent: 550€ + 40€ charges")
}

func TestDescribeFallbacks(t *testing.T) {
	assert.Equal(t, DescribeNoKey, NewClient(nil, nil).Describe(context.Background(), draft()))
	assert.Equal(t, DescribeEmpty, NewClient(&fakeGen{}, nil).Describe(context.Background(), draft()))
	assert.Equal(t, DescribeError, NewClient(&fakeGen{err: errors.New("quota")}, nil).Describe(context.Background(), draft()))
}

func TestMatchScore(t *testing.T) {
	gen := &fakeGen{text: `{"score": 85, "reason": "Le budget correspond."}`}
	p := model.Profile{Budget: 600, HasPets: true, Cleanliness: model.CleanlinessStandard, SocialVibe: model.SocialVibeQuiet, Bio: "Calme"}

	m := NewClient(gen, nil).MatchScore(context.Background(), "Studio calme", p)
	assert.Equal(t, Match{Score: 85, Reason: "Le budget correspond."}, m)
	assert.True(t, gen.jsonMode)
	assert.Contains(t, gen.prompt, `Ad Description: "Studio calme"`)
	assert.Contains(t, gen.prompt, "- Budget: 600€")
	assert.Contains(t, gen.prompt, "- Pets: Yes")
	assert.Contains(t, gen.prompt, "- Social Vibe: quiet")
}

func TestMatchScoreFallbacks(t *testing.T) {
	ctx := context.Background()
	p := model.DefaultProfile()
	cases := []struct {
		name string
		gen  Generator
		want string
	}{
		{"no key", nil, MatchNoKey},
		{"empty", &fakeGen{text: "  "}, MatchEmpty},
		{"remote error", &fakeGen{err: errors.New("503")}, MatchError},
		{"malformed", &fakeGen{text: "pas du json"}, MatchError},
		{"score too high", &fakeGen{text: `{"score": 140, "reason": "Super"}`}, MatchError},
		{"negative score", &fakeGen{text: `{"score": -1, "reason": "Non"}`}, MatchError},
		{"missing score", &fakeGen{text: `{"reason": "Bien"}`}, MatchError},
		{"string score", &fakeGen{text: `{"score": "85", "reason": "Bien"}`}, MatchError},
		{"blank reason", &fakeGen{text: `{"score": 50, "reason": " "}`}, MatchError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewClient(tc.gen, nil).MatchScore(ctx, "desc", p)
			assert.Equal(t, 0, m.Score)
			assert.Equal(t, tc.want, m.Reason)
		})
	}
}

func TestParseMatchAcceptsFencedJSON(t *testing.T) {
	m, err := parseMatch("```json\n{\"score\": 72.6, \"reason\": \"Ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, 73, m.Score)
}
