package operability

import (
	"fmt"
	"strings"

	"github.com/pulmo-helper/internal/domain"
)

// DefaultTotalSegments is the bilateral segment count.
const DefaultTotalSegments = 19

// LobeSegments holds the segment count of each lobe.
var LobeSegments = map[string]int{
	"RUL": 3,
	"RML": 2,
	"RLL": 5,
	"LUL": 5,
	"LLL": 4,
}

// LobeOrder lists the lobes for display.
var LobeOrder = []string{"RUL", "RML", "RLL", "LUL", "LLL"}

// PpoRequest is a resection calculation. FEV1 and DLCO are % predicted.
type PpoRequest struct {
	FEV1          *float64 `json:"fev1,omitempty"`
	DLCO          *float64 `json:"dlco,omitempty"`
	TotalSegments *float64 `json:"total_segments,omitempty"`
	Resected      *float64 `json:"resected_segments,omitempty"`
	Lobes         []string `json:"lobes,omitempty"`
}

// PpoResult holds the remaining fraction and the predicted values.
type PpoResult struct {
	TotalSegments    float64  `json:"total_segments"`
	ResectedSegments float64  `json:"resected_segments"`
	Fraction         float64  `json:"fraction"`
	PpoFEV1          *float64 `json:"ppo_fev1,omitempty"`
	PpoDLCO          *float64 `json:"ppo_dlco,omitempty"`
	Details          []string `json:"details"`
}

// LobeSum adds the segment counts of the named lobes. Unknown and repeated
// names are ignored.
func LobeSum(lobes []string) int {
	seen := make(map[string]bool, len(lobes))
	sum := 0
	for _, l := range lobes {
		l = strings.ToUpper(strings.TrimSpace(l))
		if seen[l] {
			continue
		}
		seen[l] = true
		sum += LobeSegments[l]
	}
	return sum
}

// RemainingFraction returns clamp(1 - resected/total, 0, 1).
func RemainingFraction(total, resected float64) (float64, error) {
	if total <= 0 {
		return 0, fmt.Errorf("total segments must be positive, got %g: %w", total, domain.ErrInvalidInput)
	}
	f := 1 - resected/total
	switch {
	case f < 0:
		return 0, nil
	case f > 1:
		return 1, nil
	}
	return f, nil
}

// ComputePpo scales a pre-operative value by the remaining fraction. A nil
// preop value is not computed.
func ComputePpo(preop *float64, total, resected float64) (fraction float64, ppo *float64, err error) {
	fraction, err = RemainingFraction(total, resected)
	if err != nil {
		return 0, nil, err
	}
	if preop != nil {
		v := *preop * fraction
		ppo = &v
	}
	return fraction, ppo, nil
}

// Calculate resolves the segment counts of req and computes ppoFEV1 and ppoDLCO.
// Selected lobes override the resected count when they add up to more than zero.
func Calculate(req PpoRequest) (PpoResult, error) {
	total := float64(DefaultTotalSegments)
	if req.TotalSegments != nil {
		total = *req.TotalSegments
	}
	resected := 0.0
	if req.Resected != nil {
		resected = *req.Resected
	}
	if sum := LobeSum(req.Lobes); sum > 0 {
		resected = float64(sum)
	}

	fraction, fev1, err := ComputePpo(req.FEV1, total, resected)
	if err != nil {
		return PpoResult{}, err
	}
	_, dlco, _ := ComputePpo(req.DLCO, total, resected)

	res := PpoResult{
		TotalSegments:    total,
		ResectedSegments: resected,
		Fraction:         fraction,
		PpoFEV1:          fev1,
		PpoDLCO:          dlco,
	}
	res.Details = append(res.Details,
		fmt.Sprintf("remaining fraction = 1 - (resect/total) = 1 - (%g/%g) = %.3f", resected, total, fraction))
	res.Details = append(res.Details, detail("ppoFEV1", req.FEV1, fraction, fev1))
	res.Details = append(res.Details, detail("ppoDLCO", req.DLCO, fraction, dlco))
	return res, nil
}

func detail(name string, preop *float64, fraction float64, ppo *float64) string {
	if preop == nil || ppo == nil {
		return name + ": not computed"
	}
	return fmt.Sprintf("%s = %g × %.3f = %.1f (%%pred)", name, *preop, fraction, *ppo)
}
