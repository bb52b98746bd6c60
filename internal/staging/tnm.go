// Package staging computes NSCLC TNM (8th edition) categories and the clinical
// stage group from checklist features.
package staging

import (
	"math"
	"strconv"
	"strings"
)

// T categories.
const (
	TX   = "TX"
	Tis  = "Tis"
	T1mi = "T1mi"
	T1a  = "T1a"
	T1b  = "T1b"
	T1c  = "T1c"
	T2a  = "T2a"
	T2b  = "T2b"
	T3   = "T3"
	T4   = "T4"
)

// N categories.
const (
	N0 = "N0"
	N1 = "N1"
	N2 = "N2"
	N3 = "N3"
)

// M categories.
const (
	M0  = "M0"
	M1a = "M1a"
	M1b = "M1b"
	M1c = "M1c"
)

// Unclassified is returned for any combination the grouping table does not cover.
const Unclassified = "Check TNM"

// TFeatures are the primary tumor findings.
type TFeatures struct {
	MinimallyInvasive bool `json:"minimally_invasive"`
	MainBronchus      bool `json:"main_bronchus"`
	VisceralPleura    bool `json:"visceral_pleura"`
	Atelectasis       bool `json:"atelectasis"`
	ChestWall         bool `json:"chest_wall"` // chest wall, parietal pleura, pericardium, phrenic nerve
	SameLobeNodule    bool `json:"same_lobe_nodule"`
	DiffLobeNodule    bool `json:"diff_lobe_nodule"` // different ipsilateral lobe
	CriticalOrgans    bool `json:"critical_organs"`  // diaphragm, mediastinum, heart, great vessels, trachea, ...
}

// NFeatures are the regional lymph node findings.
type NFeatures struct {
	IpsilateralHilar       bool `json:"ipsilateral_hilar"` // peribronchial / hilar / intrapulmonary
	IpsilateralMediastinal bool `json:"ipsilateral_mediastinal"`
	Contralateral          bool `json:"contralateral"`
	Supraclavicular        bool `json:"supraclavicular"`
}

// MFeatures are the distant metastasis findings.
type MFeatures struct {
	ContralateralLung   bool `json:"contralateral_lung"`
	PleuralPericardial  bool `json:"pleural_pericardial"`
	SingleExtrathoracic bool `json:"single_extrathoracic"`
	MultiExtrathoracic  bool `json:"multi_extrathoracic"`
}

// ParseSize reads a tumor size in centimetres. Blank, non-numeric or
// non-finite text is treated as not given.
func ParseSize(s string) *float64 {
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

// ComputeT applies the T rules in priority order; the first match wins.
//
// Size above 3cm always enters the T2 branch, so the size-only fallthrough to TX
// for sizes over 3cm cannot be reached. It is kept to mirror the decision table.
func ComputeT(f TFeatures, size *float64) string {
	switch {
	case f.CriticalOrgans || f.DiffLobeNodule:
		return T4
	case f.ChestWall || f.SameLobeNodule:
		return T3
	case f.MainBronchus || f.VisceralPleura || f.Atelectasis || (size != nil && *size > 3):
		if size != nil && *size > 4 {
			return T2b
		}
		return T2a
	}

	if size == nil {
		return TX
	}
	switch s := *size; {
	case f.MinimallyInvasive && s <= 0.5:
		return T1mi
	case s <= 1:
		return T1a
	case s <= 2:
		return T1b
	case s <= 3:
		return T1c
	default:
		return TX
	}
}

// ComputeN returns the highest node category present.
func ComputeN(f NFeatures) string {
	switch {
	case f.Contralateral || f.Supraclavicular:
		return N3
	case f.IpsilateralMediastinal:
		return N2
	case f.IpsilateralHilar:
		return N1
	default:
		return N0
	}
}

// ComputeM returns the highest metastasis category present.
func ComputeM(f MFeatures) string {
	switch {
	case f.MultiExtrathoracic:
		return M1c
	case f.SingleExtrathoracic:
		return M1b
	case f.ContralateralLung || f.PleuralPericardial:
		return M1a
	default:
		return M0
	}
}

// rangeByN is used when T is unresolved.
var rangeByN = map[string]string{
	N0: "Stage I–III (T에 따라)",
	N1: "Stage IIB–IIIA",
	N2: "Stage IIIA–IIIB",
	N3: "Stage IIIB–IIIC",
}

var stageTable = map[string]map[string]string{
	N0: {
		Tis: "Stage 0", T1mi: "Stage IA1", T1a: "Stage IA1", T1b: "Stage IA2", T1c: "Stage IA3",
		T2a: "Stage IB", T2b: "Stage IIA", T3: "Stage IIB", T4: "Stage IIIA",
	},
	N1: {
		T1mi: "Stage IIB", T1a: "Stage IIB", T1b: "Stage IIB", T1c: "Stage IIB",
		T2a: "Stage IIB", T2b: "Stage IIB", T3: "Stage IIIA", T4: "Stage IIIA",
	},
	N2: {
		T1mi: "Stage IIIA", T1a: "Stage IIIA", T1b: "Stage IIIA", T1c: "Stage IIIA",
		T2a: "Stage IIIA", T2b: "Stage IIIA", T3: "Stage IIIB", T4: "Stage IIIB",
	},
	N3: {
		T1mi: "Stage IIIB", T1a: "Stage IIIB", T1b: "Stage IIIB", T1c: "Stage IIIB",
		T2a: "Stage IIIB", T2b: "Stage IIIC", T3: "Stage IIIC", T4: "Stage IIIC",
	},
}

// GroupStage maps a T/N/M triple onto its stage group.
func GroupStage(t, n, m string) string {
	switch m {
	case M1c:
		return "Stage IVB"
	case M1a, M1b:
		return "Stage IVA"
	case M0:
	default:
		return Unclassified
	}

	if t == TX || t == "" {
		if label, ok := rangeByN[n]; ok {
			return label
		}
		return rangeByN[N0]
	}

	if label, ok := stageTable[n][t]; ok {
		return label
	}
	return Unclassified
}

var nDescriptions = map[string]string{
	N0: "N0: 림프절 전이 없음",
	N1: "N1: 같은 쪽 폐문/기관지 주위/폐내 림프절",
	N2: "N2: 같은 쪽 종격동 또는 carinal 림프절",
	N3: "N3: 반대쪽 종격동/폐문 또는 쇄골상 림프절",
}

var mDescriptions = map[string]string{
	M0:  "M0: 원격 전이 없음",
	M1a: "M1a: 반대쪽 폐 결절 또는 흉막/심낭 병변/삼출",
	M1b: "M1b: 단일 장기 단일 전이 병소",
	M1c: "M1c: 다발 원격 전이",
}

// DescribeN returns the display text of an N category, or "".
func DescribeN(n string) string { return nDescriptions[n] }

// DescribeM returns the display text of an M category, or "".
func DescribeM(m string) string { return mDescriptions[m] }

// Input is a full staging request.
type Input struct {
	T    TFeatures `json:"t"`
	Size string    `json:"size_cm"`
	N    NFeatures `json:"n"`
	M    MFeatures `json:"m"`
}

// Result is the computed staging for an Input.
type Result struct {
	T            string `json:"t"`
	N            string `json:"n"`
	M            string `json:"m"`
	NDescription string `json:"n_description"`
	MDescription string `json:"m_description"`
	Stage        string `json:"stage"`
	// RuleName is the rule table name holding guidance for the stage.
	RuleName string `json:"rule_name"`
}

// Stage recomputes every category from scratch for in.
func Stage(in Input) Result {
	t := ComputeT(in.T, ParseSize(in.Size))
	n := ComputeN(in.N)
	m := ComputeM(in.M)
	stage := GroupStage(t, n, m)
	return Result{
		T:            t,
		N:            n,
		M:            m,
		NDescription: DescribeN(n),
		MDescription: DescribeM(m),
		Stage:        stage,
		RuleName:     RuleNameForStage(stage),
	}
}

// RuleNameForStage maps a stage label to the rule name carrying its guidance.
// Rule tables name stage rules after the stage label itself.
func RuleNameForStage(stage string) string {
	return strings.TrimSpace(stage)
}
