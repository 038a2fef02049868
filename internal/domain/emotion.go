package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Emotion is one of the seven canonical labels the classifier knows about.
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionNeutral  Emotion = "neutral"
)

// EmotionCount is the size of the canonical label set.
const EmotionCount = 7

// Emotions lists the canonical labels in model output order. The index of a
// label in this slice is its index in a Scores vector.
var Emotions = [EmotionCount]Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// emotionIndex maps a label back to its position in model output order.
var emotionIndex = func() map[Emotion]int {
	m := make(map[Emotion]int, EmotionCount)
	for i, e := range Emotions {
		m[e] = i
	}
	return m
}()

// Scores holds one confidence value per canonical emotion, in model output
// order, scaled to [0,100]. Values need not sum to 100.
type Scores [EmotionCount]float64

// Get returns the score for a label, or 0 for an unknown label.
func (s Scores) Get(e Emotion) float64 {
	i, ok := emotionIndex[e]
	if !ok {
		return 0
	}
	return s[i]
}

// Dominant returns the label with the highest score and that score.
// Ties resolve to the earlier label in model output order.
func (s Scores) Dominant() (Emotion, float64) {
	best := 0
	for i := 1; i < EmotionCount; i++ {
		if s[i] > s[best] {
			best = i
		}
	}
	return Emotions[best], s[best]
}

// Validate checks that every score is finite and non-negative.
func (s Scores) Validate() error {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("score for %s is not finite", Emotions[i])
		}
		if v < 0 {
			return fmt.Errorf("score for %s is negative: %f", Emotions[i], v)
		}
	}
	return nil
}

// MarshalJSON encodes the vector as a label→score object.
func (s Scores) MarshalJSON() ([]byte, error) {
	m := make(map[Emotion]float64, EmotionCount)
	for i, e := range Emotions {
		m[e] = s[i]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a label→score object. Unknown labels are rejected,
// missing labels default to 0.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var m map[Emotion]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out Scores
	for e, v := range m {
		i, ok := emotionIndex[e]
		if !ok {
			return fmt.Errorf("unknown emotion label %q", e)
		}
		out[i] = v
	}
	*s = out
	return nil
}

// Vector returns the scores as a float32 slice for storage as a pgvector
// column.
func (s Scores) Vector() []float32 {
	out := make([]float32, EmotionCount)
	for i, v := range s {
		out[i] = float32(v)
	}
	return out
}

// ScoresFromVector rebuilds scores from a stored vector column.
func ScoresFromVector(v []float32) (Scores, error) {
	var out Scores
	if len(v) != EmotionCount {
		return out, fmt.Errorf("score vector has %d entries, want %d", len(v), EmotionCount)
	}
	for i, f := range v {
		out[i] = float64(f)
	}
	return out, nil
}
