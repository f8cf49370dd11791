package triage

import (
	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// saturationHits is the number of matched lexicon keywords at which the
// classifier treats the evidence as conclusive.
const saturationHits = 3

// Classification is the result of one classifier call.
type Classification struct {
	Category   domain.TicketCategory
	Confidence float64
	// MatchedKeywords holds the per-category lexicon hits that produced
	// the score, keeping classification explainable after the fact.
	MatchedKeywords map[domain.TicketCategory][]string
}

// Classifier assigns a category and confidence to ticket text using a
// fixed keyword lexicon. It is a pure function of its input: no stored
// state, no randomness, identical text always yields identical output.
type Classifier struct{}

// NewClassifier returns a classifier over the built-in lexicon.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores text against every category lexicon. The category with
// the most distinct keyword hits wins; ties break by the fixed precedence
// order billing > tech > shipping > other. With no hits at all the result
// is OTHER with confidence 0.
//
// Confidence blends dominance (winner hits over total hits across all
// categories) with evidence volume (hits capped at saturationHits), so a
// single stray keyword never produces full confidence.
func (c *Classifier) Classify(text string) Classification {
	tokens := Tokenize(text)
	present := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		present[token] = struct{}{}
	}

	matched := make(map[domain.TicketCategory][]string)
	totalHits := 0
	for category, keywords := range lexicon {
		for _, keyword := range keywords {
			if _, ok := present[keyword]; ok {
				matched[category] = append(matched[category], keyword)
				totalHits++
			}
		}
	}

	winner := domain.CategoryOther
	winnerHits := 0
	for _, category := range domain.Categories {
		if hits := len(matched[category]); hits > winnerHits {
			winner = category
			winnerHits = hits
		}
	}

	if winnerHits == 0 {
		return Classification{Category: domain.CategoryOther, Confidence: 0, MatchedKeywords: matched}
	}

	dominance := float64(winnerHits) / float64(totalHits)
	saturation := float64(winnerHits) / float64(saturationHits)
	if saturation > 1 {
		saturation = 1
	}
	confidence := dominance * saturation
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Classification{Category: winner, Confidence: confidence, MatchedKeywords: matched}
}
