package ranking

import (
	"math"
	"sort"

	"github.com/dharmasatrya/tripplanner/internal/models"
)

const (
	// ConfidenceCostScale is the total cost at which confidence bottoms out.
	ConfidenceCostScale = 5000.0
	MinConfidence       = 0.5
	BookNowThreshold    = 0.7

	RecommendBookNow = "Book now"
	RecommendWait    = "Wait for better prices"
)

// Rank orders itineraries cheapest first and fills in confidence and
// recommendation where the optimizer left them out. The input is not
// modified.
func Rank(its []models.Itinerary) []models.Itinerary {
	if len(its) == 0 {
		return its
	}

	result := make([]models.Itinerary, len(its))
	copy(result, its)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalCost < result[j].TotalCost
	})

	for i := range result {
		if result[i].Confidence == nil {
			c := CalculateConfidence(result[i].TotalCost)
			result[i].Confidence = &c
		}
		if result[i].Recommendation == "" {
			result[i].Recommendation = Recommend(*result[i].Confidence)
		}
	}

	return result
}

// Cheaper routes score higher
func CalculateConfidence(totalCost float64) float64 {
	score := math.Max(MinConfidence, 1.0-totalCost/ConfidenceCostScale)
	return math.Round(score*100) / 100
}

func Recommend(confidence float64) string {
	if confidence > BookNowThreshold {
		return RecommendBookNow
	}
	return RecommendWait
}
