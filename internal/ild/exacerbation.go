// Package ild holds the interstitial lung disease decision rules: the acute
// exacerbation criteria and the chronic differential diagnosis list.
package ild

// AEFlags are the simplified AE-IPF (2016 revision) criteria.
type AEFlags struct {
	Sudden30Days    bool `json:"sudden_30_days"`    // acute worsening within 30 days
	KnownIPF        bool `json:"known_ipf"`         // IPF diagnosed or strongly suspected
	NewBilateralGGO bool `json:"new_bilateral_ggo"` // new bilateral GGO/consolidation on UIP background
	NotHFOverload   bool `json:"not_hf_overload"`   // not fully explained by heart failure or fluid overload
}

// Count returns how many criteria are set.
func (f AEFlags) Count() int {
	n := 0
	for _, v := range []bool{f.Sudden30Days, f.KnownIPF, f.NewBilateralGGO, f.NotHFOverload} {
		if v {
			n++
		}
	}
	return n
}

// AE verdicts.
const (
	AELikely   = "likely"
	AEPossible = "possible"
)

// AEResult is the outcome of ClassifyAcuteExacerbation.
type AEResult struct {
	Verdict  string   `json:"verdict"`
	Met      int      `json:"criteria_met"`
	Summary  string   `json:"summary"`
	Guidance []string `json:"guidance"`
}

// Likely reports whether the AE-IPF criteria are satisfied.
func (r AEResult) Likely() bool { return r.Verdict == AELikely }

// ClassifyAcuteExacerbation requires at least three criteria and, among them,
// both the 30-day onset and the new bilateral opacity.
func ClassifyAcuteExacerbation(f AEFlags) AEResult {
	met := f.Count()
	if met >= 3 && f.Sudden30Days && f.NewBilateralGGO {
		return AEResult{
			Verdict: AELikely,
			Met:     met,
			Summary: "AE-IPF 의심(간이 기준)",
			Guidance: []string{
				"최근 30일 이내 급성 악화 + CT 신규 양측 GGO/경화 + HF/수액과다로 설명 어려움",
				"IPF 진단/치료 규칙을 확인하세요.",
			},
		}
	}
	return AEResult{
		Verdict: AEPossible,
		Met:     met,
		Summary: "급성악화(AE)는 의심될 수 있으나, AE-IPF 간이 기준을 충분히 만족하지 않습니다.",
		Guidance: []string{
			"감염/혈전/심부전/약물/기타 ILD-AE를 함께 평가하세요.",
			"만성 ILD 진단은 감별 진단 단계에서 진행하세요.",
		},
	}
}

// AERuleSequence lists the acute exacerbation rule names in the order they are
// tried; the first one present in the rule table is opened.
var AERuleSequence = []string{
	"ILD 급성악화 – 감별진단",
	"ILD 급성악화 – 초기 처치",
	"ILD 급성악화 – 스테로이드",
	"ILD 급성악화 – 기계환기 판단",
	"ILD 급성악화 – 예후 및 목표 치료",
	"ILD 급성악화",
}

// RuleCategory is the rule table category preferred for ILD lookups.
const RuleCategory = "ILD"
