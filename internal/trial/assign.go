package trial

import (
	"strings"

	"github.com/pulmo-helper/internal/domain"
)

// Message levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Message is one line of assignment guidance.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Step groups the messages of one assignment stage.
type Step struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Assignment is the guidance produced for one patient.
type Assignment struct {
	Steps []Step `json:"steps"`
}

// Text renders the assignment as plain text.
func (a Assignment) Text() string {
	var b strings.Builder
	for i, s := range a.Steps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + s.Title + "\n")
		for _, m := range s.Messages {
			b.WriteString(m.Text + "\n")
		}
	}
	return b.String()
}

// COPD SIT choices.
const (
	SITNone        = ""
	SITSevere      = "severe"
	SITMaintenance = "maintenance"
	SITBE          = "bronchiectasis"
)

// COPDInput are the COPD assignment answers.
type COPDInput struct {
	NewDiagnosis bool   `json:"new_diagnosis"` // post-bronchodilator FEV1/FVC < 0.7, newly diagnosed
	HomeOxygen   bool   `json:"home_oxygen"`
	ChronicCough bool   `json:"chronic_cough"` // 8 weeks or more, unexplained
	RSVVaccine   bool   `json:"rsv_vaccine"`   // age 50 or more
	SIT          string `json:"sit,omitempty"`
}

// target is a status key shown at a message level.
type target struct {
	key   string
	level string
}

func (t target) message(status Status) Message {
	return Message{Level: t.level, Text: status.Get(t.key)}
}

var copdSITKeys = map[string]target{
	SITSevere:      {KeyCOPDSevere, LevelError},
	SITMaintenance: {KeyCOPDMaintenance, LevelInfo},
	SITBE:          {KeyCOPDBE, LevelSuccess},
}

// AssignCOPD runs the registry, special condition and SIT stages.
func AssignCOPD(in COPDInput, status Status) (Assignment, error) {
	registry := Step{Title: "1단계: 레지스트리"}
	if in.NewDiagnosis {
		registry.Messages = []Message{
			{LevelSuccess, "✅ [필수] KOCOSS 레지스트리 등록\n\n* 신규 환자 필수 등록\n* 대상자 중 '노쇠/근감소증 연구' 동시 등록 가능"},
			{LevelInfo, "👉 유형 분류: TB / BE / Asthma / PRISM / Smoker 중 선택"},
		}
	} else {
		registry.Messages = []Message{{LevelInfo, "기존 등록 환자입니다."}}
	}

	special := Step{Title: "2단계: 특수 조건"}
	if in.HomeOxygen {
		special.Messages = append(special.Messages, Message{LevelWarning, "👉 [가정산소] IIT. 마이숨 (MyBreath)"})
	}
	if in.ChronicCough {
		special.Messages = append(special.Messages, Message{LevelWarning, "👉 [만성기침] IIT. 만성기침 레지스트리"})
	}
	if in.RSVVaccine {
		special.Messages = append(special.Messages, Message{LevelWarning, "👉 [백신] GSK. Arexvy PMS"})
	}
	if len(special.Messages) == 0 {
		special.Messages = []Message{{LevelInfo, "해당 사항 없음"}}
	}

	sit := Step{Title: "3단계: 임상시험(SIT) 추가 배정"}
	switch choice := strings.TrimSpace(in.SIT); choice {
	case SITNone:
		sit.Messages = []Message{{LevelInfo, "선택 안함"}}
	default:
		t, ok := copdSITKeys[choice]
		if !ok {
			return Assignment{}, domain.NewValidationError("sit", "unknown COPD SIT choice", in.SIT)
		}
		sit.Messages = []Message{t.message(status)}
	}

	return Assignment{Steps: []Step{registry, special, sit}}, nil
}

// AsthmaInput are the asthma assignment answers.
type AsthmaInput struct {
	Eosinophils  float64 `json:"eosinophils"` // cells/µL
	Rhinitis     bool    `json:"rhinitis"`
	ChronicCough bool    `json:"chronic_cough"`
	Uncontrolled bool    `json:"uncontrolled"`
}

// EosinophilCutoff is the blood eosinophil count that qualifies for the
// eosinophilic asthma trial.
const EosinophilCutoff = 300

// AssignAsthma returns the base registry plus every matching trial in priority order.
func AssignAsthma(in AsthmaInput, status Status) Assignment {
	base := Step{
		Title:    "기본 레지스트리",
		Messages: []Message{{LevelInfo, "✅ [기본] TiGER / PRISM / KOSAR\n\n* 모든 중증/치료불응성 천식 환자 등록"}},
	}

	result := Step{Title: "배정 결과"}
	if in.Eosinophils >= EosinophilCutoff {
		result.Messages = append(result.Messages, Message{LevelSuccess, status.Get(KeyAsthmaEos)})
	}
	if in.Rhinitis {
		result.Messages = append(result.Messages, Message{LevelWarning, status.Get(KeyAsthmaRhinitis)})
	}
	if in.ChronicCough {
		result.Messages = append(result.Messages, Message{LevelWarning, status.Get(KeyEtcCough)})
	}
	if in.Uncontrolled {
		result.Messages = append(result.Messages, Message{LevelError, status.Get(KeyAsthmaBio)})
	}
	if len(result.Messages) == 0 {
		result.Messages = []Message{{LevelInfo, "👉 특별한 SIT 대상이 아닙니다. 1단계 레지스트리 등록을 우선 진행하세요."}}
	}

	return Assignment{Steps: []Step{base, result}}
}

// Other diagnoses.
const (
	DiagnosisBE    = "be"
	DiagnosisCough = "cough"
	DiagnosisAcute = "acute"
	DiagnosisIPF   = "ipf"
)

var otherKeys = map[string]target{
	DiagnosisBE:    {KeyEtcBE, LevelSuccess},
	DiagnosisCough: {KeyEtcCough, LevelWarning},
	DiagnosisAcute: {KeyEtcAcute, LevelInfo},
	DiagnosisIPF:   {KeyEtcIPF, LevelError},
}

// AssignOther returns the guide for bronchiectasis, chronic cough, acute
// bronchitis or IPF.
func AssignOther(diagnosis string, status Status) (Assignment, error) {
	t, ok := otherKeys[strings.ToLower(strings.TrimSpace(diagnosis))]
	if !ok {
		return Assignment{}, domain.NewValidationError("diagnosis", "diagnosis must be one of be, cough, acute, ipf", diagnosis)
	}
	return Assignment{Steps: []Step{{
		Title:    "배정 가이드",
		Messages: []Message{t.message(status)},
	}}}, nil
}
