package qa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/docqa/internal/models"
)

func TestParseAnswerAccepts(t *testing.T) {
	cases := map[string]models.Confidence{
		`{"answer":"a","confidence":"high","source_quotes":[],"not_found":false}`:            models.ConfidenceHigh,
		"```json\n{\"answer\":\"a\",\"confidence\":\"Medium\",\"source_quotes\":[\"q\"]}\n```": models.ConfidenceMedium,
		`{"answer":"a","confidence":"low","source_quotes":[" ", "q"]}`:                       models.ConfidenceLow,
		`{"answer":"a","confidence":"high","source_quotes":[],"not_found":true}`:             models.ConfidenceNotFound,
	}
	for in, want := range cases {
		got, err := parseAnswer(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got.Confidence, in)
		require.Equal(t, "a", got.Text)
	}

	got, err := parseAnswer(`{"answer":"a","confidence":"low","source_quotes":[" ", "q"]}`)
	require.NoError(t, err)
	require.Equal(t, []string{"q"}, got.Quotes)
}

func TestParseAnswerRejects(t *testing.T) {
	for _, in := range []string{
		``,
		`The answer is 30 days.`,
		`[]`,
		`{"confidence":"high","source_quotes":[]}`,
		`{"answer":"  ","confidence":"high","source_quotes":[]}`,
		`{"answer":"a","source_quotes":[]}`,
		`{"answer":"a","confidence":"certain","source_quotes":[]}`,
		`{"answer":"a","confidence":"high"}`,
		`{"answer":"a","confidence":"high","source_quotes":"q"}`,
		`{"answer":"a","confidence":"high","source_quotes":[]} trailing`,
		`{"answer":"a","confidence":"high","source_quotes":[]}}`,
		`{"answer":"a","confidence":"high","source_quotes":[]}]`,
		`{"answer":"a","confidence":"high","source_quotes":[]}{}`,
		`{"answer":"","confidence":"low","source_quotes":[],"not_found":false}`,
	} {
		_, err := parseAnswer(in)
		require.ErrorIs(t, err, ErrGenerationFormat, in)
	}
}

func TestParseAnswerEmptyNotFound(t *testing.T) {
	for _, in := range []string{
		`{"answer":"","confidence":"not_found","source_quotes":[],"not_found":true}`,
		`{"answer":"  ","confidence":"not_found","source_quotes":[]}`,
		`{"answer":"","confidence":"low","source_quotes":[],"not_found":true}`,
	} {
		got, err := parseAnswer(in)
		require.NoError(t, err, in)
		require.Equal(t, models.ConfidenceNotFound, got.Confidence, in)
		require.Equal(t, notFoundAnswer, got.Text, in)
		require.Empty(t, got.Quotes)
	}

	require.Contains(t, systemPrompt, notFoundAnswer)
}

func TestParseAnswerKeepsNotFoundText(t *testing.T) {
	got, err := parseAnswer(`{"answer":"The document does not say.","confidence":"not_found","source_quotes":[],"not_found":true}`)
	require.NoError(t, err)
	require.Equal(t, "The document does not say.", got.Text)
}

func TestGroundQuotes(t *testing.T) {
	content := "Internal Audit Report.\nFinding 1: Timestamp  mismatch affecting 345 trades per day.\nAll findings are due by March 31, 2026."

	kept, dropped := groundQuotes(content, []string{
		"Timestamp mismatch affecting 345 trades",
		"\"All findings are due by March 31, 2026.\"",
		"Finding 4: none",
		"timestamp mismatch",
	})
	require.Equal(t, 2, dropped)
	require.Equal(t, []string{
		"Timestamp  mismatch affecting 345 trades",
		"All findings are due by March 31, 2026.",
	}, kept)
	for _, q := range kept {
		require.Contains(t, content, q)
	}
}

func TestGroundQuotesMultibyte(t *testing.T) {
	content := "Prix: 30 €.\nDélai de remboursement: 30 jours."
	kept, dropped := groundQuotes(content, []string{"Délai de remboursement", "30 €"})
	require.Zero(t, dropped)
	require.Equal(t, []string{"Délai de remboursement", "30 €"}, kept)
}
