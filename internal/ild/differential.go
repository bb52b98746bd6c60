package ild

// HRCT pattern values.
const (
	Fibrotic    = "fibrotic"
	NonFibrotic = "nonfibrotic"
)

// UIP pattern values for fibrotic ILD.
const (
	UIP           = "uip"
	ProbableUIP   = "probable"
	Indeterminate = "indeterminate"
	Alternative   = "alternative"
)

// Diagnoses returned by the chronic differential.
const (
	CTDILD        = "CTD-ILD"
	HP            = "HP"
	PPFE          = "PPFE"
	IdiopathicLIP = "idiopathic LIP"
	COP           = "COP"
	AIP           = "AIP"
	DIP           = "DIP"
	IPF           = "IPF"
	INSIP         = "iNSIP"
)

// ChronicFlags are the HRCT pattern and etiology clues.
type ChronicFlags struct {
	HRCT string `json:"hrct"` // Fibrotic or NonFibrotic; blank means Fibrotic
	UIP  string `json:"uip"`  // UIP pattern; blank means Indeterminate

	CTDClue        bool `json:"ctd_clue"`
	HPClue         bool `json:"hp_clue"`
	SmokingRelated bool `json:"smoking_related"`
	OPPattern      bool `json:"op_pattern"`
	DADLike        bool `json:"dad_ards_like"`
	LIPClue        bool `json:"lip_clue"`
	PPFEClue       bool `json:"ppfe_clue"`
}

func (f ChronicFlags) withDefaults() ChronicFlags {
	if f.HRCT == "" {
		f.HRCT = Fibrotic
	}
	if f.UIP == "" {
		f.UIP = Indeterminate
	}
	return f
}

// Diagnosis is the first matching branch of the differential list.
type Diagnosis struct {
	Name      string `json:"diagnosis"`
	Rationale string `json:"rationale"`
	// BiopsyAdvised is set for iNSIP and AIP, and for fibrotic ILD whose UIP
	// pattern is indeterminate or alternative.
	BiopsyAdvised bool     `json:"biopsy_advised"`
	BiopsyPoints  []string `json:"biopsy_points,omitempty"`
	RuleName      string   `json:"rule_name"`
}

// BiopsyPoints are shown whenever a biopsy is advised.
var BiopsyPoints = []string{
	"HRCT가 UIP/UIP-Probable이 아니거나 임상-영상 불일치 시",
	"치료 방향 결정에 중요하면 TBLC/SLB 고려",
	"가능하면 MDD 후 결정",
}

type branch struct {
	when      func(ChronicFlags) bool
	name      string
	rationale string
}

// differential is evaluated top to bottom; only the first match applies.
var differential = []branch{
	{func(f ChronicFlags) bool { return f.CTDClue }, CTDILD,
		"CTD 단서가 있어 CTD-ILD 우선 고려(자가항체/류마협진/MDD)."},
	{func(f ChronicFlags) bool { return f.HPClue }, HP,
		"노출력/air-trapping 등 HP 단서가 있어 HP 우선 고려(항원 회피/필요 시 BAL/조직)."},
	{func(f ChronicFlags) bool { return f.PPFEClue }, PPFE,
		"상엽 흉막하 우세 섬유화/pleural thickening → PPFE 의심."},
	{func(f ChronicFlags) bool { return f.LIPClue }, IdiopathicLIP,
		"LIP 단서(낭종+GGO). 이차 원인 배제 후 idiopathic LIP 고려."},
	{func(f ChronicFlags) bool { return f.OPPattern }, COP,
		"OP 패턴(이동성/patchy consolidation). 이차 원인 배제 후 COP 고려."},
	{func(f ChronicFlags) bool { return f.DADLike }, AIP,
		"급성 ARDS-like + DAD 의심. 원인 배제 후 AIP/AFOP 감별(조직검사 고려)."},
	{func(f ChronicFlags) bool { return f.SmokingRelated }, DIP,
		"흡연 관련 ILD(DIP 등) 가능. 금연 및 스테로이드 반응 가능."},
	{func(f ChronicFlags) bool { return f.HRCT == Fibrotic && (f.UIP == UIP || f.UIP == ProbableUIP) }, IPF,
		"Fibrotic ILD에서 UIP/Probable UIP이며 다른 원인 단서가 뚜렷하지 않아 IPF 가능성이 높습니다.\n" +
			"- 다른 원인 배제 후: 조직검사 없이도 진단 가능할 수 있습니다."},
	{func(f ChronicFlags) bool { return f.HRCT == Fibrotic }, INSIP,
		"UIP로 확정되지 않는 fibrotic ILD(Indeterminate/Alternative).\n" +
			"➡ NSIP/기타 IIP 감별이 필요하며 치료결정(면역억제 vs 항섬유화)에 중요하면 조직검사(TBLC/SLB)를 고려합니다."},
	{func(f ChronicFlags) bool { return true }, INSIP,
		"Non-fibrotic ILD에서 NSIP 패턴 가능.\nCTD/HP/약물/감염 배제 후 필요 시 조직검사로 확진합니다."},
}

// ClassifyChronicDifferential returns the first matching diagnosis.
func ClassifyChronicDifferential(flags ChronicFlags) Diagnosis {
	f := flags.withDefaults()

	var d Diagnosis
	for _, b := range differential {
		if b.when(f) {
			d = Diagnosis{Name: b.name, Rationale: b.rationale}
			break
		}
	}

	d.BiopsyAdvised = d.Name == INSIP || d.Name == AIP ||
		(f.HRCT == Fibrotic && (f.UIP == Indeterminate || f.UIP == Alternative))
	if d.BiopsyAdvised {
		d.BiopsyPoints = BiopsyPoints
	}
	d.RuleName = RuleNameFor(d.Name)
	return d
}

// ruleNames maps a diagnosis onto the rule table name carrying its guidance.
var ruleNames = map[string]string{
	IPF:                  "IPF 진단 치료",
	HP:                   "HP 진단 치료",
	CTDILD:               "CTD-ILD 진단 치료",
	INSIP:                "iNSIP 진단 치료",
	DIP:                  "DIP 진단 치료",
	COP:                  "COP 진단치료",
	"AFOP":               "AFOP 진단 치료",
	AIP:                  "AIP 진단 치료",
	IdiopathicLIP:        "idiopathic LIP 진단 치료",
	PPFE:                 "PPFE",
	"Unclassifiable IIP": "Unclassifiable IIP",
}

// RuleNameFor returns the rule name for a diagnosis, or the diagnosis itself.
func RuleNameFor(diagnosis string) string {
	if name, ok := ruleNames[diagnosis]; ok {
		return name
	}
	return diagnosis
}
