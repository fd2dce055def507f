package service

import (
	"math"

	"github.com/workforce-analytics-api/internal/dto"
)

const (
	roiTrendThreshold      = 5.0
	costGrowthThreshold    = 10.0
	costDeclineThreshold   = -5.0
	lowConfidenceThreshold = 0.5
)

// RecommendationInput - прогнозы, по которым формируются рекомендации
type RecommendationInput struct {
	ROI   dto.ForecastResponse
	Cost  dto.ForecastResponse
	Stale bool
}

// Recommend применяет правила по порядку. Каждое правило проверяется независимо от остальных.
func Recommend(in RecommendationInput) []string {
	recs := []string{}
	roiPct := in.ROI.TrendPercentage
	costPct := in.Cost.TrendPercentage

	if in.ROI.Trend > 0 && roiPct > roiTrendThreshold {
		recs = append(recs, "ROI is projected to increase significantly. Consider expanding successful projects.")
	}
	if roiPct < -roiTrendThreshold {
		recs = append(recs, "ROI is projected to decrease. Review project performance and consider cost-cutting measures.")
	}
	if math.Abs(roiPct) <= roiTrendThreshold {
		recs = append(recs, "ROI is projected to remain stable. Maintain current strategy.")
	}

	if in.Cost.Trend > 0 && costPct > costGrowthThreshold {
		recs = append(recs, "Costs are projected to increase significantly. Review budget allocations and identify areas for optimization.")
	}
	if costPct < costDeclineThreshold {
		recs = append(recs, "Costs are projected to decrease. Ensure this doesn't impact quality or employee satisfaction.")
	}
	if costPct >= costDeclineThreshold && costPct <= costGrowthThreshold {
		recs = append(recs, "Costs are projected to remain stable. Continue monitoring for any changes.")
	}

	if in.ROI.Predicted < 0 {
		recs = append(recs, "Department is projected to operate at a loss next month. Review revenue streams and the project portfolio.")
	}
	if math.Min(in.ROI.Confidence, in.Cost.Confidence) < lowConfidenceThreshold {
		recs = append(recs, "Forecast confidence is low. Gather more operational data and retrain the department model.")
	}
	if in.Stale {
		recs = append(recs, "The department model is outdated. Retrain it to reflect current operations.")
	}

	return recs
}
