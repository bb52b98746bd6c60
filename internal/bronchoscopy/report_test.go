package bronchoscopy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allNormal() Report {
	n := Lobar{Normal: true}
	return Report{RUL: n, RML: n, RLL: n, LUL: n, Lingular: n, LLL: n}
}

func TestComposeMinimal(t *testing.T) {
	want := strings.Join([]string{
		"2. Findings:",
		"  b) Right bronchus",
		"     - no endobronchial lesion or mucosal change",
		"  c) Left bronchus",
		"     - no endobronchial lesion or mucosal change",
	}, "\n") + "\n"

	assert.Equal(t, want, Compose(allNormal()))
}

func TestComposeEmptyFormListsEveryLobe(t *testing.T) {
	out := Compose(Report{})
	for _, prefix := range []string{"RUL", "RML", "RLL", "LUL", "Lingular", "LLL"} {
		assert.Contains(t, out, "     - "+prefix+": (no selection)\n")
	}
}

func TestComposeFull(t *testing.T) {
	r := allNormal()
	r.Sedation = Sedation{Midazolam: true, MidazolamDose: "2", Fentanyl: true, FentanylDose: "50", Other: true}
	r.UpperAirway = UpperAirway{VocalCord: Mass, Subglottic: "stenosis"}
	r.RLL = Lobar{Secretion: true, SecretionSegment: "B6", Stenosis: true, StenosisPercent: "50", StenosisSite: "B10", DistalOcclusion: true}
	r.Secretion = Secretion{Amount: "적음", Character: "기타", Bleeding: "oozing", BleedingSite: "RB6", BleedingAction: "cold saline"}
	r.OtherFindings = OtherFindings{MucusPlug: true, Stent: "good", FreeText: "overall benign"}
	r.Procedures = Procedures{BAL: true, BALSite: "RB4", EBB: true, EBBCount: "4", EBUSTBNA: true, EBUSStation: "4R", EBUSPass: "3"}
	r.Specimens = Specimens{Cytology: true, AFB: true, PCR: true, PCRText: "MTB"}
	r.Complications = Complications{Hypoxemia: true, Other: true}

	want := strings.Join([]string{
		"1. Sedation/Analgesia: Midazolam 2 mg, Fentanyl 50 mcg, 기타",
		"",
		"2. Findings:",
		"  a) Upper airway / Larynx",
		"     - Vocal cord : mass/polyp",
		"     - Supraglottic/Subglottic : stenosis",
		"  b) Right bronchus",
		"     - RUL: normal",
		"     - RML: normal",
		"     - RLL: increased secretion (segment: B6); luminal narrowing (~50%) (site: B10); distal occlusion/obstruction",
		"  c) Left bronchus",
		"     - no endobronchial lesion or mucosal change",
		"  e) Secretion/Bleeding (overall)",
		"     - Secretion amount: 적음",
		"     - Secretion character: etc",
		"     - Bleeding: minor oozing (site: RB6) (action: cold saline)",
		"  f) Other findings",
		"     - airway plug/mucus plug; stent: good; overall benign",
		"",
		"3. Procedures:",
		"  - BAL (site: RB4)",
		"  - Endobronchial biopsy (n=4)",
		"  - EBUS-TBNA (station: 4R, pass: 3)",
		"  Specimen requests: Cytology, AFB/TB, PCR/Other: MTB",
		"",
		"4. Complications:",
		"  - hypoxemia, etc",
	}, "\n") + "\n"

	assert.Equal(t, want, Compose(r))
}

func TestLobarFieldsRestrictedByLobe(t *testing.T) {
	r := allNormal()
	r.Lingular = Lobar{Stenosis: true, StenosisPercent: "30", StenosisSite: "ignored", DistalOcclusion: true}
	r.LUL = Lobar{Secretion: true, SecretionSegment: "ignored"}

	assert.Equal(t, []string{
		"LUL: increased secretion",
		"Lingular: luminal narrowing (~30%)",
		"LLL: normal",
	}, LeftLines(r))
}

func TestNormalWinsOverFindings(t *testing.T) {
	r := allNormal()
	r.RUL.Mass = true
	assert.Equal(t, []string{noLesion}, RightLines(r))
}

func TestUpperAirwayLines(t *testing.T) {
	assert.Empty(t, UpperAirwayLines(UpperAirway{}))
	assert.Empty(t, UpperAirwayLines(UpperAirway{VocalCord: Other, Subglottic: Other}))
	assert.Equal(t, []string{"Vocal cord : normal", "Supraglottic/Subglottic : normal"},
		UpperAirwayLines(UpperAirway{VocalCord: Normal, Subglottic: Normal}))
	assert.Equal(t, []string{"Vocal cord : nodule", "Supraglottic/Subglottic : web"},
		UpperAirwayLines(UpperAirway{VocalCord: Other, VocalCordOther: "nodule", Subglottic: Other, SubglotticOther: "web"}))
	assert.Equal(t, []string{"Vocal cord : paralysis"}, UpperAirwayLines(UpperAirway{VocalCord: "paralysis"}))
}

func TestComplicationNoneOverrides(t *testing.T) {
	assert.Equal(t, []string{"none"}, ComplicationParts(Complications{None: true, Bleeding: true}))
	assert.Equal(t, []string{"bleeding", "arrhythmia", "hypotension/hypertension", "desaturation"},
		ComplicationParts(Complications{Bleeding: true, Arrhythmia: true, BloodPressure: true, Other: true, OtherText: "desaturation"}))
}

func TestSedationText(t *testing.T) {
	assert.Equal(t, "", SedationText(Sedation{}))
	assert.Equal(t, "무진정", SedationText(Sedation{None: true}))
	assert.Equal(t, "Propofol 30 mg, 기타: ketamine", SedationText(Sedation{Propofol: true, PropofolDose: " 30 ", Other: true, OtherText: "ketamine"}))
}

func TestSecretionLinesUnknownBleeding(t *testing.T) {
	assert.Equal(t, []string{"Secretion character: 화농성", "Bleeding: massive"},
		SecretionLines(Secretion{Character: "화농성", Bleeding: "massive"}))
}
