package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreboardChoiceRounding(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		questions int
		want      int
	}{
		{"two of three", 2, 3, 67},
		{"four of six", 4, 6, 67},
		{"one of three", 1, 3, 33},
		{"all correct", 6, 6, 100},
		{"none answered", 0, 6, 0},
		{"no questions", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b scoreboard
			b.addChoice(tt.correct, tt.questions)
			assert.Equal(t, tt.want, b.final(CaptureChoice))
		})
	}
}

func TestScoreboardRecordingAverage(t *testing.T) {
	var b scoreboard
	b.addHook(0)
	b.addHook(75)
	assert.Equal(t, 38, b.final(CaptureRecording))

	var empty scoreboard
	assert.Equal(t, 0, empty.final(CaptureRecording))
}

func TestBandScoreStaysInRange(t *testing.T) {
	f := BandScore(75, 100)
	for i := 0; i < 200; i++ {
		s := f(Exercise{}, Artifact{})
		assert.GreaterOrEqual(t, s, 75)
		assert.Less(t, s, 100)
	}
	assert.Equal(t, 50, BandScore(50, 50)(Exercise{}, Artifact{}))
}

func TestSpeakingScoreWithinBands(t *testing.T) {
	f := SpeakingScore()
	for i := 0; i < 200; i++ {
		s := f(Exercise{}, Artifact{})
		assert.GreaterOrEqual(t, s, 70)
		assert.LessOrEqual(t, s, 100)
	}
}
