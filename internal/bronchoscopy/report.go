// Package bronchoscopy composes the numbered bronchoscopy report from the
// procedure form.
package bronchoscopy

import "strings"

// Sedation lists the agents given. Doses are free text.
type Sedation struct {
	None          bool   `json:"none,omitempty"`
	Midazolam     bool   `json:"midazolam,omitempty"`
	MidazolamDose string `json:"midazolam_dose,omitempty"`
	Fentanyl      bool   `json:"fentanyl,omitempty"`
	FentanylDose  string `json:"fentanyl_dose,omitempty"`
	Propofol      bool   `json:"propofol,omitempty"`
	PropofolDose  string `json:"propofol_dose,omitempty"`
	Other         bool   `json:"other,omitempty"`
	OtherText     string `json:"other_text,omitempty"`
}

// Vocal cord states.
const (
	Normal       = "normal"
	Edema        = "edema"
	Erythema     = "erythema"
	Mass         = "mass"
	MovementAbnl = "movement_abnl"
	Other        = "other"
)

// UpperAirway holds the larynx findings. Status values outside the known set
// are printed as given.
type UpperAirway struct {
	VocalCord       string `json:"vocal_cord,omitempty"`
	VocalCordOther  string `json:"vocal_cord_other,omitempty"`
	Subglottic      string `json:"subglottic,omitempty"`
	SubglotticOther string `json:"subglottic_other,omitempty"`
}

// Lobar holds the findings of one lobar bronchus. Segment and distal occlusion
// apply to the lower lobes only; the lingula has no stenosis site.
type Lobar struct {
	Normal               bool   `json:"normal,omitempty"`
	Secretion            bool   `json:"secretion,omitempty"`
	SecretionSegment     string `json:"secretion_segment,omitempty"`
	Erythema             bool   `json:"erythema,omitempty"`
	Stenosis             bool   `json:"stenosis,omitempty"`
	StenosisPercent      string `json:"stenosis_percent,omitempty"`
	StenosisSite         string `json:"stenosis_site,omitempty"`
	Mass                 bool   `json:"mass,omitempty"`
	MassSite             string `json:"mass_site,omitempty"`
	ExtrinsicCompression bool   `json:"extrinsic_compression,omitempty"`
	DistalOcclusion      bool   `json:"distal_occlusion,omitempty"`
	Other                string `json:"other,omitempty"`
}

// Secretion is the overall secretion and bleeding assessment.
type Secretion struct {
	Amount         string `json:"amount,omitempty"`
	Character      string `json:"character,omitempty"` // "기타" uses CharacterOther
	CharacterOther string `json:"character_other,omitempty"`
	Bleeding       string `json:"bleeding,omitempty"` // none, oozing, focal, active
	BleedingSite   string `json:"bleeding_site,omitempty"`
	BleedingAction string `json:"bleeding_action,omitempty"`
}

// OtherFindings are airway findings outside the lobar blocks.
type OtherFindings struct {
	MucusPlug            bool   `json:"mucus_plug,omitempty"`
	Aspiration           bool   `json:"aspiration,omitempty"`
	ExtrinsicCompression bool   `json:"extrinsic_compression,omitempty"`
	Malacia              bool   `json:"malacia,omitempty"`
	Stent                string `json:"stent,omitempty"` // good, malposition, granulation, obstruction
	FreeText             string `json:"free_text,omitempty"`
}

// Procedures performed during the bronchoscopy.
type Procedures struct {
	Washing      bool   `json:"washing,omitempty"`
	WashingSite  string `json:"washing_site,omitempty"`
	BAL          bool   `json:"bal,omitempty"`
	BALSite      string `json:"bal_site,omitempty"`
	EBB          bool   `json:"ebb,omitempty"`
	EBBSite      string `json:"ebb_site,omitempty"`
	EBBCount     string `json:"ebb_count,omitempty"`
	RadialEBUS   bool   `json:"radial_ebus,omitempty"`
	RadialSite   string `json:"radial_ebus_site,omitempty"`
	RadialCount  string `json:"radial_ebus_count,omitempty"`
	Brushing     bool   `json:"brushing,omitempty"`
	BrushingSite string `json:"brushing_site,omitempty"`
	EBUSTBNA     bool   `json:"ebus_tbna,omitempty"`
	EBUSStation  string `json:"ebus_station,omitempty"`
	EBUSPass     string `json:"ebus_pass,omitempty"`
	Other        string `json:"other,omitempty"`
}

// Specimens requested from the lab.
type Specimens struct {
	Cytology  bool   `json:"cytology,omitempty"`
	Histology bool   `json:"histology,omitempty"`
	Culture   bool   `json:"culture,omitempty"`
	AFB       bool   `json:"afb,omitempty"`
	Fungal    bool   `json:"fungal,omitempty"`
	PCR       bool   `json:"pcr,omitempty"`
	PCRText   string `json:"pcr_text,omitempty"`
}

// Complications observed. None overrides every other flag.
type Complications struct {
	None          bool   `json:"none,omitempty"`
	Hypoxemia     bool   `json:"hypoxemia,omitempty"`
	Bleeding      bool   `json:"bleeding,omitempty"`
	Arrhythmia    bool   `json:"arrhythmia,omitempty"`
	BloodPressure bool   `json:"blood_pressure,omitempty"`
	Other         bool   `json:"other,omitempty"`
	OtherText     string `json:"other_text,omitempty"`
}

// Report is the whole procedure form.
type Report struct {
	Sedation      Sedation      `json:"sedation"`
	UpperAirway   UpperAirway   `json:"upper_airway"`
	RUL           Lobar         `json:"rul"`
	RML           Lobar         `json:"rml"`
	RLL           Lobar         `json:"rll"`
	LUL           Lobar         `json:"lul"`
	Lingular      Lobar         `json:"lingular"`
	LLL           Lobar         `json:"lll"`
	Secretion     Secretion     `json:"secretion"`
	OtherFindings OtherFindings `json:"other_findings"`
	Procedures    Procedures    `json:"procedures"`
	Specimens     Specimens     `json:"specimens"`
	Complications Complications `json:"complications"`
}

const noLesion = "no endobronchial lesion or mucosal change"

func trim(s string) string { return strings.TrimSpace(s) }

// withDetails appends "(a, b)" built from the non-empty details.
func withDetails(name string, details ...string) string {
	var kept []string
	for _, d := range details {
		if d != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return name
	}
	return name + " (" + strings.Join(kept, ", ") + ")"
}

func labelled(label, value string) string {
	if value = trim(value); value == "" {
		return ""
	}
	return label + value
}

// SedationText joins the sedation agents with ", ".
func SedationText(s Sedation) string {
	var parts []string
	if s.None {
		parts = append(parts, "무진정")
	}
	if s.Midazolam {
		parts = append(parts, "Midazolam "+trim(s.MidazolamDose)+" mg")
	}
	if s.Fentanyl {
		parts = append(parts, "Fentanyl "+trim(s.FentanylDose)+" mcg")
	}
	if s.Propofol {
		parts = append(parts, "Propofol "+trim(s.PropofolDose)+" mg")
	}
	if s.Other {
		if etc := trim(s.OtherText); etc != "" {
			parts = append(parts, "기타: "+etc)
		} else {
			parts = append(parts, "기타")
		}
	}
	return strings.Join(parts, ", ")
}

var vocalCordText = map[string]string{
	Normal:       "Vocal cord : normal",
	Edema:        "Vocal cord : edema",
	Erythema:     "Vocal cord : erythema",
	Mass:         "Vocal cord : mass/polyp",
	MovementAbnl: "Vocal cord : movement abnormality",
}

// UpperAirwayLines renders the vocal cord and supra/subglottic findings.
func UpperAirwayLines(u UpperAirway) []string {
	var lines []string
	switch vc := trim(u.VocalCord); vc {
	case "":
	case Other:
		if other := trim(u.VocalCordOther); other != "" {
			lines = append(lines, "Vocal cord : "+other)
		}
	default:
		if text, ok := vocalCordText[vc]; ok {
			lines = append(lines, text)
		} else {
			lines = append(lines, "Vocal cord : "+vc)
		}
	}

	switch sg := trim(u.Subglottic); sg {
	case "":
	case Other:
		if other := trim(u.SubglotticOther); other != "" {
			lines = append(lines, "Supraglottic/Subglottic : "+other)
		}
	default:
		lines = append(lines, "Supraglottic/Subglottic : "+sg)
	}
	return lines
}

type lobe struct {
	prefix       string
	lower        bool // segment and distal occlusion fields exist
	stenosisSite bool
}

var (
	rul      = lobe{prefix: "RUL", stenosisSite: true}
	rml      = lobe{prefix: "RML", stenosisSite: true}
	rll      = lobe{prefix: "RLL", lower: true, stenosisSite: true}
	lul      = lobe{prefix: "LUL", stenosisSite: true}
	lingular = lobe{prefix: "Lingular"}
	lll      = lobe{prefix: "LLL", lower: true, stenosisSite: true}
)

func (l lobe) text(f Lobar) string {
	if f.Normal {
		return l.prefix + ": normal"
	}
	var parts []string
	if f.Secretion {
		seg := ""
		if l.lower {
			seg = labelled("segment: ", f.SecretionSegment)
		}
		parts = append(parts, withDetails("increased secretion", seg))
	}
	if f.Erythema {
		parts = append(parts, "mucosal erythema/edema")
	}
	if f.Stenosis {
		msg := "luminal narrowing"
		if pct := trim(f.StenosisPercent); pct != "" {
			msg += " (~" + pct + "%)"
		}
		if l.stenosisSite {
			if site := trim(f.StenosisSite); site != "" {
				msg += " (site: " + site + ")"
			}
		}
		parts = append(parts, msg)
	}
	if f.Mass {
		parts = append(parts, withDetails("mass/nodule", labelled("site: ", f.MassSite)))
	}
	if f.ExtrinsicCompression {
		parts = append(parts, "suspected extrinsic compression")
	}
	if l.lower && f.DistalOcclusion {
		parts = append(parts, "distal occlusion/obstruction")
	}
	if other := trim(f.Other); other != "" {
		parts = append(parts, other)
	}
	if len(parts) == 0 {
		return l.prefix + ": (no selection)"
	}
	return l.prefix + ": " + strings.Join(parts, "; ")
}

func sideLines(lobes []lobe, findings []Lobar) []string {
	allNormal := true
	for _, f := range findings {
		allNormal = allNormal && f.Normal
	}
	if allNormal {
		return []string{noLesion}
	}
	lines := make([]string, len(lobes))
	for i, l := range lobes {
		lines[i] = l.text(findings[i])
	}
	return lines
}

// RightLines renders the RUL, RML and RLL findings.
func RightLines(r Report) []string {
	return sideLines([]lobe{rul, rml, rll}, []Lobar{r.RUL, r.RML, r.RLL})
}

// LeftLines renders the LUL, lingular and LLL findings.
func LeftLines(r Report) []string {
	return sideLines([]lobe{lul, lingular, lll}, []Lobar{r.LUL, r.Lingular, r.LLL})
}

var bleedingText = map[string]string{
	"none":   "Bleeding: none",
	"oozing": "Bleeding: minor oozing",
	"focal":  "Bleeding: focal",
	"active": "Bleeding: active",
}

// SecretionLines renders the overall secretion and bleeding assessment.
func SecretionLines(s Secretion) []string {
	var parts []string
	if amount := trim(s.Amount); amount != "" {
		parts = append(parts, "Secretion amount: "+amount)
	}
	switch c := trim(s.Character); c {
	case "":
	case "기타":
		etc := trim(s.CharacterOther)
		if etc == "" {
			etc = "etc"
		}
		parts = append(parts, "Secretion character: "+etc)
	default:
		parts = append(parts, "Secretion character: "+c)
	}
	if b := trim(s.Bleeding); b != "" {
		line, ok := bleedingText[b]
		if !ok {
			line = "Bleeding: " + b
		}
		if site := trim(s.BleedingSite); site != "" {
			line += " (site: " + site + ")"
		}
		if action := trim(s.BleedingAction); action != "" {
			line += " (action: " + action + ")"
		}
		parts = append(parts, line)
	}
	return parts
}

// OtherFindingParts lists the other findings in form order.
func OtherFindingParts(o OtherFindings) []string {
	var parts []string
	if o.MucusPlug {
		parts = append(parts, "airway plug/mucus plug")
	}
	if o.Aspiration {
		parts = append(parts, "suspected aspiration material")
	}
	if o.ExtrinsicCompression {
		parts = append(parts, "extrinsic compression")
	}
	if o.Malacia {
		parts = append(parts, "suspected tracheobronchomalacia/dynamic collapse")
	}
	if st := trim(o.Stent); st != "" {
		parts = append(parts, "stent: "+st)
	}
	if free := trim(o.FreeText); free != "" {
		parts = append(parts, free)
	}
	return parts
}

// ProcedureLines lists the procedures performed.
func ProcedureLines(p Procedures) []string {
	var parts []string
	if p.Washing {
		parts = append(parts, withDetails("Bronchial washing", labelled("site: ", p.WashingSite)))
	}
	if p.BAL {
		parts = append(parts, withDetails("BAL", labelled("site: ", p.BALSite)))
	}
	if p.EBB {
		parts = append(parts, withDetails("Endobronchial biopsy", labelled("site: ", p.EBBSite), labelled("n=", p.EBBCount)))
	}
	if p.RadialEBUS {
		parts = append(parts, withDetails("Radial EBUS", labelled("site: ", p.RadialSite), labelled("n=", p.RadialCount)))
	}
	if p.Brushing {
		parts = append(parts, withDetails("Brushing", labelled("site: ", p.BrushingSite)))
	}
	if p.EBUSTBNA {
		parts = append(parts, withDetails("EBUS-TBNA", labelled("station: ", p.EBUSStation), labelled("pass: ", p.EBUSPass)))
	}
	if etc := trim(p.Other); etc != "" {
		parts = append(parts, "Other procedure: "+etc)
	}
	return parts
}

// SpecimenRequests lists the requested lab work.
func SpecimenRequests(s Specimens) []string {
	var req []string
	if s.Cytology {
		req = append(req, "Cytology")
	}
	if s.Histology {
		req = append(req, "Histology")
	}
	if s.Culture {
		req = append(req, "Bacterial culture")
	}
	if s.AFB {
		req = append(req, "AFB/TB")
	}
	if s.Fungal {
		req = append(req, "Fungal")
	}
	if s.PCR {
		if etc := trim(s.PCRText); etc != "" {
			req = append(req, "PCR/Other: "+etc)
		} else {
			req = append(req, "PCR/Other")
		}
	}
	return req
}

// ComplicationParts lists the complications; "none" stands alone.
func ComplicationParts(c Complications) []string {
	if c.None {
		return []string{"none"}
	}
	var parts []string
	if c.Hypoxemia {
		parts = append(parts, "hypoxemia")
	}
	if c.Bleeding {
		parts = append(parts, "bleeding")
	}
	if c.Arrhythmia {
		parts = append(parts, "arrhythmia")
	}
	if c.BloodPressure {
		parts = append(parts, "hypotension/hypertension")
	}
	if c.Other {
		if etc := trim(c.OtherText); etc != "" {
			parts = append(parts, etc)
		} else {
			parts = append(parts, "etc")
		}
	}
	return parts
}

// Compose renders the full numbered report.
func Compose(r Report) string {
	var lines []string
	bullet := func(items []string) {
		for _, x := range items {
			lines = append(lines, "     - "+x)
		}
	}

	if sed := SedationText(r.Sedation); sed != "" {
		lines = append(lines, "1. Sedation/Analgesia: "+sed)
	}

	lines = append(lines, "", "2. Findings:")
	if ua := UpperAirwayLines(r.UpperAirway); len(ua) > 0 {
		lines = append(lines, "  a) Upper airway / Larynx")
		bullet(ua)
	}
	lines = append(lines, "  b) Right bronchus")
	bullet(RightLines(r))
	lines = append(lines, "  c) Left bronchus")
	bullet(LeftLines(r))

	if se := SecretionLines(r.Secretion); len(se) > 0 {
		lines = append(lines, "  e) Secretion/Bleeding (overall)")
		bullet(se)
	}
	if oth := OtherFindingParts(r.OtherFindings); len(oth) > 0 {
		lines = append(lines, "  f) Other findings", "     - "+strings.Join(oth, "; "))
	}

	if proc := ProcedureLines(r.Procedures); len(proc) > 0 {
		lines = append(lines, "", "3. Procedures:")
		for _, x := range proc {
			lines = append(lines, "  - "+x)
		}
	}
	if req := SpecimenRequests(r.Specimens); len(req) > 0 {
		lines = append(lines, "  Specimen requests: "+strings.Join(req, ", "))
	}

	if comp := ComplicationParts(r.Complications); len(comp) > 0 {
		lines = append(lines, "", "4. Complications:", "  - "+strings.Join(comp, ", "))
	}

	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
