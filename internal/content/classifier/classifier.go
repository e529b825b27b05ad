// internal/content/classifier/classifier.go
package classifier

import (
	"sort"
	"strings"

	"content-workers/internal/models"
)

const (
	// GeneralType is returned when no category accumulates enough signal.
	GeneralType = "general"

	// minAbsoluteScore is the floor below which a top score is treated as noise.
	minAbsoluteScore = 4

	// secondaryRatio is the fraction of the top score a runner-up must reach
	// to be reported as a secondary type.
	secondaryRatio = 0.30

	generalConfidence = 25
)

type keyword struct {
	term   string
	weight int
}

// categoryKeywords is the weighted vocabulary per supported business category.
// Heavier terms are near-unambiguous for the category; weight-1 terms only
// matter in aggregate.
var categoryKeywords = map[string][]keyword{
	"restaurant": {
		{"restaurant", 4}, {"menu", 3}, {"chef", 3}, {"cuisine", 3},
		{"dining", 3}, {"catering", 3}, {"bistro", 3}, {"cafe", 2},
		{"bakery", 2}, {"pizza", 2}, {"brunch", 2}, {"dish", 2},
		{"food", 1}, {"meal", 1}, {"kitchen", 1}, {"delivery", 1},
	},
	"retail": {
		{"boutique", 4}, {"storefront", 3}, {"merchandise", 3}, {"retail", 3},
		{"apparel", 3}, {"ecommerce", 3}, {"catalog", 2}, {"inventory", 2},
		{"shop", 2}, {"store", 2}, {"shopping", 2}, {"clothing", 2},
		{"product", 1}, {"brand", 1}, {"sale", 1}, {"collection", 1},
	},
	"fitness": {
		{"gym", 4}, {"fitness", 4}, {"workout", 3}, {"crossfit", 3},
		{"pilates", 3}, {"yoga", 3}, {"trainer", 3}, {"training", 2},
		{"cardio", 2}, {"strength", 2}, {"membership", 1}, {"class", 1},
		{"coach", 1}, {"wellness", 1},
	},
	"beauty": {
		{"salon", 4}, {"spa", 4}, {"skincare", 3}, {"makeup", 3},
		{"cosmetic", 3}, {"manicure", 3}, {"barber", 3}, {"lashes", 2},
		{"facial", 2}, {"hair", 2}, {"nails", 2}, {"beauty", 2},
		{"stylist", 2}, {"treatment", 1}, {"glow", 1},
	},
	"finance": {
		{"accounting", 4}, {"bookkeeping", 4}, {"tax", 3}, {"mortgage", 3},
		{"insurance", 3}, {"investment", 3}, {"advisor", 2}, {"audit", 2},
		{"payroll", 2}, {"lending", 2}, {"finance", 2}, {"financial", 2},
		{"wealth", 1}, {"loan", 1}, {"credit", 1},
	},
	"technology": {
		{"software", 4}, {"saas", 4}, {"startup", 3}, {"developer", 3},
		{"platform", 2}, {"cloud", 2}, {"automation", 2}, {"analytics", 2},
		{"api", 2}, {"data", 1}, {"digital", 1}, {"tech", 1},
		{"app", 1}, {"integration", 1},
	},
	"healthcare": {
		{"clinic", 4}, {"dental", 4}, {"physician", 3}, {"medical", 3},
		{"therapy", 3}, {"chiropractic", 3}, {"pediatric", 3}, {"patient", 2},
		{"doctor", 2}, {"dentist", 2}, {"health", 1}, {"care", 1},
		{"appointment", 1}, {"treatment", 1},
	},
	"education": {
		{"tutoring", 4}, {"academy", 3}, {"curriculum", 3}, {"school", 3},
		{"course", 2}, {"teacher", 2}, {"student", 2}, {"learning", 2},
		{"lesson", 2}, {"training", 1}, {"education", 2}, {"workshop", 1},
		{"exam", 1}, {"classroom", 2},
	},
}

// hintWeight multiplies keyword weight when the match comes from the
// profile's own category hints rather than free text.
const hintWeight = 2

type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Classify scores the profile text against every category vocabulary and
// returns the best (and, when close enough, second-best) category. It is
// total: unrecognizable input falls back to the general category rather
// than an error.
func (c *Classifier) Classify(profile *models.BrandProfile) models.BusinessTypeDetection {
	corpus := buildCorpus(profile)
	hints := strings.ToLower(strings.Join(profile.CategoryHints, " "))

	type scored struct {
		category string
		score    int
		signals  []string
	}

	results := make([]scored, 0, len(categoryKeywords))
	for category, keywords := range categoryKeywords {
		score := 0
		var signals []string
		for _, kw := range keywords {
			matched := false
			if strings.Contains(hints, kw.term) {
				score += kw.weight * hintWeight
				matched = true
			} else if strings.Contains(corpus, kw.term) {
				score += kw.weight
				matched = true
			}
			if matched {
				signals = append(signals, kw.term)
			}
		}
		if score > 0 {
			results = append(results, scored{category: category, score: score, signals: signals})
		}
	}

	if len(results) == 0 {
		return generalDetection()
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		// Stable outcome for equal scores.
		return results[i].category < results[j].category
	})

	top := results[0]
	if top.score < minAbsoluteScore {
		return generalDetection()
	}

	detection := models.BusinessTypeDetection{
		PrimaryType:       top.category,
		PrimaryConfidence: normalizeConfidence(top.score),
		Signals:           top.signals,
	}

	if len(results) > 1 {
		second := results[1]
		if float64(second.score) >= float64(top.score)*secondaryRatio && second.score >= minAbsoluteScore {
			detection.SecondaryType = second.category
			detection.SecondaryConfidence = normalizeConfidence(second.score)
		}
	}

	return detection
}

// normalizeConfidence maps a raw keyword score onto a 0-100 confidence.
// Scores saturate: past ~15 points extra matches stop adding certainty.
func normalizeConfidence(score int) int {
	confidence := 30 + score*5
	if confidence > 98 {
		confidence = 98
	}
	return confidence
}

func buildCorpus(profile *models.BrandProfile) string {
	parts := []string{
		profile.Name,
		profile.Description,
		profile.Audience,
		profile.Voice,
		profile.SiteText,
	}
	parts = append(parts, profile.Services...)
	parts = append(parts, profile.Products...)
	return strings.ToLower(strings.Join(parts, " "))
}

func generalDetection() models.BusinessTypeDetection {
	return models.BusinessTypeDetection{
		PrimaryType:       GeneralType,
		PrimaryConfidence: generalConfidence,
	}
}
