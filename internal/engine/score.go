package engine

import (
	"math"
	"math/rand"
)

// ScoreFunc 录音类练习的打分钩子，返回 0-100。
// 真实的语音评测尚未接入，默认实现按区间随机打分。
type ScoreFunc func(ex Exercise, art Artifact) int

// BandScore 返回 [lo, hi) 区间内随机打分的钩子。
func BandScore(lo, hi int) ScoreFunc {
	return func(Exercise, Artifact) int {
		if hi <= lo {
			return lo
		}
		return lo + rand.Intn(hi-lo)
	}
}

// SpeakingScore 口语评分：流利度、发音、完整度三项取平均。
func SpeakingScore() ScoreFunc {
	fluency := BandScore(70, 100)
	pronunciation := BandScore(75, 100)
	completeness := BandScore(80, 100)
	return func(ex Exercise, art Artifact) int {
		sum := fluency(ex, art) + pronunciation(ex, art) + completeness(ex, art)
		return int(math.Round(float64(sum) / 3))
	}
}

// scoreboard 跨练习累计的成绩。choice 类按答对子题数计，
// recording 类按每题钩子得分计。
type scoreboard struct {
	correct   int
	questions int
	hooks     []int
}

func (b *scoreboard) addChoice(correct, questions int) {
	b.correct += correct
	b.questions += questions
}

func (b *scoreboard) addHook(score int) {
	b.hooks = append(b.hooks, score)
}

// final 模块总分。choice: round(100*答对数/总子题数)；
// recording: 各题钩子得分取平均。没有可计分项时为 0。
func (b *scoreboard) final(kind CaptureKind) int {
	switch kind {
	case CaptureChoice:
		if b.questions == 0 {
			return 0
		}
		return int(math.Round(100 * float64(b.correct) / float64(b.questions)))
	case CaptureRecording:
		if len(b.hooks) == 0 {
			return 0
		}
		sum := 0
		for _, s := range b.hooks {
			sum += s
		}
		return int(math.Round(float64(sum) / float64(len(b.hooks))))
	}
	return 0
}
