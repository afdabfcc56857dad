package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLineups(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf to lf", "Line 1: Hughes\r\nLine 2: Meier", "Line 1: Hughes\nLine 2: Meier"},
		{"bare cr to lf", "Line 1\rLine 2", "Line 1\nLine 2"},
		{"trailing whitespace trimmed", "Line 1\nLine 2 \t\n\n", "Line 1\nLine 2"},
		{"internal blank lines kept", "Line 1\n\nLine 3", "Line 1\n\nLine 3"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame()
			g.HomeLineupText = tt.in
			g.AwayLineupText = tt.in
			g.NormalizeLineups()
			assert.Equal(t, tt.want, g.HomeLineupText)
			assert.Equal(t, tt.want, g.AwayLineupText)
		})
	}
}

func TestGameValidate(t *testing.T) {
	valid := func() *Game {
		g := NewGame()
		g.Title = "Devils vs Rangers"
		g.HomeTeam = "Devils"
		g.AwayTeam = "Rangers"
		return g
	}

	assert.NoError(t, valid().Validate())

	g := valid()
	g.Title = "   "
	assert.ErrorContains(t, g.Validate(), "title is required")

	g = valid()
	g.HomeTeam = ""
	assert.ErrorContains(t, g.Validate(), "home team is required")

	g = valid()
	g.Title = strings.Repeat("x", MaxTitleLen+1)
	assert.ErrorContains(t, g.Validate(), "too long")

	g = valid()
	g.ScoreHome = MaxScore + 1
	assert.ErrorContains(t, g.Validate(), "home team score")

	g = valid()
	g.ScoreAway = -1
	assert.ErrorContains(t, g.Validate(), "away team score")

	g = valid()
	g.ScoreHome = MaxScore
	g.ScoreAway = MinScore
	assert.NoError(t, g.Validate())
}
