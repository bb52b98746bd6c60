package checklist

// Item lists shown on each checklist tab. Labels are rendered after CleanLabel.
var (
	SymptomsBase = []string{
		"Cough (기침)",
		"Sputum (가래)",
		"Rhinorrhea (콧물)",
		"Nasal congestion (코막힘)",
		"Sore throat (인후통)",
		"Hemoptysis (혈담/객혈)",
		"Dyspnea (호흡곤란, at rest / exertional)",
		"Wheezing (천명음)",
		"Chest pain or tightness (흉통/답답함)",
		"Fever/chill (발열/오한)",
		"Fatigue (피로)",
		"Weight loss (체중 감소)",
		"현재 흡연 중",
	}

	ILDFollowUp = []string{
		"Dry, persistent cough (건성·지속 기침)",
		"Progressive dyspnea (점진적 악화 호흡곤란)",
		"Orthopnea/PND (기좌호흡/야간발작호흡곤란)",
	}

	ILDNew = []string{
		"증상 시작 후 기간 6개월 이상",
		"점진적 호흡곤란/건성기침 지속",
		"체중 감소/식욕 저하(최근 6개월)",
		"손가락지팡이증/관절통/피부 변화",
		"가족력(ILD/IPF/CTD) 있음",
		"흡연력(현재/과거 팩-이어) 있음",
		"직업/환경 노출(석면/분진/조류/농약) 있음",
		"약제 노출(암약제/면역억제제/항암제) 있음",
		"CTD 증상(레이노/관절염/근력 저하/피부 경화) 있음",
		"동반질환(고혈압/GERD/당뇨/심부전) 있음",
		"이전 PFT(6MWT) 결과 악화 추세",
		"급성 악화(AE) 병력 있음",
	}

	LungCancer = []string{
		"최근 수주–수개월간 기침/호흡곤란 악화",
		"객혈 또는 혈담 경험",
		"설명되지 않는 체중 감소/식욕 저하",
		"흉통/어깨통증/뼈 통증",
		"쉰목소리(hoarseness) 또는 삼킴 곤란",
		"두통, 어지러움, 신경학적 증상(마비, 감각저하 등)",
		"이전 항암/방사선 치료력 있음",
		"마지막 치료 후 악화된 증상 있음",
		"현재 복용 중 항암제/표적치료제/면역항암제 있음",
		"관련 의심 부작용(피부, 호흡, 위장, 간/신장 기능 이상 등) 있음",
	}

	COPD = []string{
		"만성 기침(3개월 이상/2년 이상 반복)",
		"만성 가래(아침/계절성 포함)",
		"최근 1년간 악화(Exacerbation)로 응급실/입원 경험",
		"계단 오르기/평지 보행 시 숨참 증가",
		"야간/새벽에 악화되는 호흡곤란",
		"흡연 중이거나 과거 흡연력(팩-이어) 있음",
		"직업적/환경적 노출(분진, 화학물질, 실내·실외 공기오염) 있음",
		"흡입제(ICS/LABA/LAMA 등) 규칙적 사용",
		"흡입기 사용법 교육 받은 적 있음",
		"최근 흡입제 종류 변경/중단 있음",
		"산소치료(가정 산소) 사용 중",
		"처방된 시간/유량대로 사용함",
		"흡입제/산소 사용과 관련된 불편감/부작용 있음",
		"기타 호흡기 질환 공통 질문 생활습관 및 위험인자",
	}

	MedicationAE = []string{
		"약제 처방대로 복용/사용함",
		"경구 항생제 복용함",
		"최근 약제 중단/용량 변경 있음",
		"스테로이드 부작용(부종, 고혈당, 불면 등) 있음",
		"항섬유화제 부작용(GI, 피부, 간기능 등) 있음",
		"흡입제 사용법 숙지/규칙적 사용",
		"흡입제 부작용(구강칸디다, 쉰목소리 등) 있음",
	}

	LabImaging = []string{
		"CBC abnormality",
		"BUN/Cr abnl",
		"OT/PT/T.bil elevation",
		"e' abnl",
		"CXR abnl",
		"CT result",
		"PFT FEV1/FVC/Ratio ///",
		"DLco",
		"5MWT",
	}

	Plan = []string{
		"Add",
		"d/c",
		"다음 PFT 검사",
		"다음 CT 검사",
		"입원",
	}
)

// FollowUpChoices are the accepted OPD follow-up intervals.
var FollowUpChoices = []string{"1wk", "2wk", "1m", "3m", "6m"}

// Template names.
const (
	TemplateGeneral = "호흡기 일반"
	TemplateILDNew  = "ILD 초진"
	TemplateILDFU   = "ILD 재진"
	TemplateLungCa  = "폐암"
	TemplateCOPD    = "COPD"

	DefaultTemplate = TemplateGeneral
)

const (
	symptomsTitle    = "현재 증상"
	medicationTitle  = "약제/부작용"
	labImagingTitle  = "Lab/영상"
	furtherPlanTitle = "Further Plan"
)

// Templates lists the template names in menu order.
var Templates = []string{TemplateGeneral, TemplateILDNew, TemplateILDFU, TemplateLungCa, TemplateCOPD}

// Section is one checklist tab.
type Section struct {
	Title    string   `json:"title"`
	Items    []string `json:"items"`
	MMRC     bool     `json:"mmrc,omitempty"`
	FollowUp bool     `json:"follow_up,omitempty"`
}

func withExtra(extra *Section) []Section {
	out := []Section{{Title: symptomsTitle, Items: SymptomsBase, MMRC: true}}
	if extra != nil {
		out = append(out, *extra)
	}
	return append(out,
		Section{Title: medicationTitle, Items: MedicationAE},
		Section{Title: labImagingTitle, Items: LabImaging},
		Section{Title: furtherPlanTitle, Items: Plan, FollowUp: true},
	)
}

var templateSections = map[string][]Section{
	TemplateGeneral: withExtra(nil),
	TemplateILDNew:  withExtra(&Section{Title: "ILD 초진 추가", Items: ILDNew}),
	TemplateILDFU:   withExtra(&Section{Title: "ILD 재진 추가", Items: ILDFollowUp}),
	TemplateLungCa:  withExtra(&Section{Title: "폐암 추가", Items: LungCancer}),
	TemplateCOPD:    withExtra(&Section{Title: "COPD 추가", Items: COPD}),
}

// SectionsFor returns the tabs of a template. Unknown names get the general template.
func SectionsFor(template string) []Section {
	sections, ok := templateSections[template]
	if !ok {
		sections = templateSections[DefaultTemplate]
	}
	return append([]Section(nil), sections...)
}

// KnownTemplate reports whether name is one of Templates.
func KnownTemplate(name string) bool {
	_, ok := templateSections[name]
	return ok
}
