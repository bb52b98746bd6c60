// Package operability scores pre-operative pulmonary risk (ARISCAT) and
// predicts post-operative lung function after resection.
package operability

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Incision sites.
const (
	Peripheral     = "peripheral"
	UpperAbdominal = "upper_abdominal"
	Intrathoracic  = "intrathoracic"
)

// Risk tiers.
const (
	TierLow          = "Low (<26)"
	TierIntermediate = "Intermediate (26–44)"
	TierHigh         = "High (≥45)"
)

// ARISCATInput holds the seven predictors. Nil numerics are not scored.
type ARISCATInput struct {
	Age             *float64 `json:"age,omitempty"`
	SpO2            *float64 `json:"spo2,omitempty"`
	RecentInfection bool     `json:"recent_infection"`
	Anemia          bool     `json:"anemia"` // Hb < 10 g/dL
	Incision        string   `json:"incision"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
	Emergency       bool     `json:"emergency"`
}

// Part is one itemized contribution of the score.
type Part struct {
	Item   string `json:"item"`
	Points int    `json:"points"`
	Label  string `json:"label"`
	Scored bool   `json:"scored"`
}

// ARISCATResult is the scored total with every contribution listed.
type ARISCATResult struct {
	Total int    `json:"total"`
	Tier  string `json:"tier"`
	Parts []Part `json:"parts"`
}

// Lines returns the contribution labels in order.
func (r ARISCATResult) Lines() []string {
	out := make([]string, len(r.Parts))
	for i, p := range r.Parts {
		out[i] = p.Label
	}
	return out
}

// ParseNumber reads a numeric field. Blank, non-numeric or non-finite text is
// absent.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func notScored(item, what string) Part {
	return Part{Item: item, Label: what + ": not scored (+0)"}
}

func scored(item string, points int, label string) Part {
	return Part{Item: item, Points: points, Label: label, Scored: true}
}

func agePart(age *float64) Part {
	switch {
	case age == nil:
		return notScored("age", "나이")
	case *age > 80:
		return scored("age", 16, "나이 >80: +16")
	case *age >= 51:
		return scored("age", 3, "나이 51–80: +3")
	default:
		return scored("age", 0, "나이 ≤50: +0")
	}
}

func spo2Part(spo2 *float64) Part {
	switch {
	case spo2 == nil:
		return notScored("spo2", "SpO₂")
	case *spo2 <= 90:
		return scored("spo2", 24, "SpO₂ ≤90%: +24")
	case *spo2 <= 95:
		return scored("spo2", 8, "SpO₂ 91–95%: +8")
	default:
		return scored("spo2", 0, "SpO₂ ≥96%: +0")
	}
}

func incisionPart(site string) Part {
	switch site {
	case UpperAbdominal:
		return scored("incision", 15, "상복부 수술: +15")
	case Intrathoracic:
		return scored("incision", 24, "흉강내 수술: +24")
	default:
		return scored("incision", 0, "말초 수술: +0")
	}
}

func durationPart(minutes *float64) Part {
	switch {
	case minutes == nil:
		return notScored("duration", "수술시간")
	case *minutes > 180:
		return scored("duration", 23, "수술시간 >180분: +23")
	case *minutes >= 120:
		return scored("duration", 16, "수술시간 120–180분: +16")
	default:
		return scored("duration", 0, "수술시간 <120분: +0")
	}
}

func flagPart(item string, set bool, points int, yes, no string) Part {
	if set {
		return scored(item, points, yes)
	}
	return scored(item, 0, no)
}

// Tier maps a total onto its risk tier.
func Tier(total int) string {
	switch {
	case total < 26:
		return TierLow
	case total < 45:
		return TierIntermediate
	default:
		return TierHigh
	}
}

// Score computes the ARISCAT total. An unknown incision site scores as peripheral.
func Score(in ARISCATInput) ARISCATResult {
	parts := []Part{
		agePart(in.Age),
		spo2Part(in.SpO2),
		flagPart("recent_infection", in.RecentInfection, 17, "최근 1개월 호흡기 감염: +17", "최근 1개월 호흡기 감염: +0"),
		flagPart("anemia", in.Anemia, 11, "Hb <10 g/dL: +11", "Hb ≥10 g/dL: +0"),
		incisionPart(in.Incision),
		durationPart(in.DurationMinutes),
		flagPart("emergency", in.Emergency, 8, "응급수술: +8", "응급수술 아님: +0"),
	}

	total := 0
	for _, p := range parts {
		total += p.Points
	}
	return ARISCATResult{Total: total, Tier: Tier(total), Parts: parts}
}

// Summary renders the result as display text.
func (r ARISCATResult) Summary() string {
	return fmt.Sprintf("ARISCAT 점수: %d   위험도: %s\n세부 점수:\n- %s",
		r.Total, r.Tier, strings.Join(r.Lines(), "\n- "))
}
