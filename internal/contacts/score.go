package contacts

import (
	"github.com/jonathan/contact-discovery/internal/crawling"
	"github.com/jonathan/contact-discovery/internal/types"
)

// Scoring weights
const (
	baseScore        = 0.3
	emailBonus       = 0.5
	validEmailBonus  = 0.9
	phoneBonus       = 0.6
	handleBonus      = 0.7
	jsonLDBonus      = 0.2
	footerBonus      = 0.1
	contactPageBonus = 0.15
	contactIconBonus = 0.1
	headerBonus      = 0.05
	depthWeight      = 0.05
	maxConfidence    = 1.0
)

// Scorer assigns a confidence in [0, 1] to a contact occurrence
type Scorer struct {
	normalizer *Normalizer
}

// NewScorer creates a Scorer that uses normalizer for the email validity bonus
func NewScorer(normalizer *Normalizer) *Scorer {
	return &Scorer{normalizer: normalizer}
}

// Score computes the confidence of value given its context signals
func (s *Scorer) Score(t types.ContactType, value string, sig types.Signals) float64 {
	score := baseScore

	switch t {
	case types.ContactEmail:
		if s.normalizer.IsValidEmail(value) {
			score += validEmailBonus
		} else {
			score += emailBonus
		}
	case types.ContactPhone:
		score += phoneBonus
	case types.ContactSocial, types.ContactMessenger:
		score += handleBonus
	}

	if sig.FromJSONLD {
		score += jsonLDBonus
	}
	if sig.InFooter {
		score += footerBonus
	}
	if sig.IsContactPage {
		score += contactPageBonus
	}
	if sig.HasContactIcon {
		score += contactIconBonus
	}
	if sig.InHeader {
		score += headerBonus
	}
	score += crawling.DepthScore(sig.URLDepth) * depthWeight

	if score > maxConfidence {
		return maxConfidence
	}
	return score
}
