// Package engagement maps a classification outcome to a coarse engagement
// tier.
//
// The tiering is emotion-conditional: attentive reactions (happy, surprise,
// fear) above a high confidence read as high engagement, a confident neutral
// face as medium, everything else as low. Score thresholds operate on the
// [0,100] scale.
package engagement

import (
	"github.com/visioncraft-labs/emoscope/internal/domain"
)

const (
	// highThreshold is the minimum score for the high tier.
	highThreshold = 80.0
	// mediumThreshold is the minimum neutral score for the medium tier.
	mediumThreshold = 50.0
)

// attentive lists the emotions that signal active engagement when strongly
// expressed.
var attentive = map[domain.Emotion]bool{
	domain.EmotionHappy:    true,
	domain.EmotionSurprise: true,
	domain.EmotionFear:     true,
}

// Classify returns the tier for a dominant emotion and its score.
func Classify(emotion domain.Emotion, score float64) domain.Engagement {
	switch {
	case attentive[emotion] && score > highThreshold:
		return domain.EngagementHigh
	case emotion == domain.EmotionNeutral && score > mediumThreshold:
		return domain.EngagementMedium
	default:
		return domain.EngagementLow
	}
}
