package checklist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulmo-helper/internal/domain"
)

func intp(v int) *int { return &v }

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cough (기침)", "Cough"},
		{"Dyspnea (호흡곤란, at rest / exertional)", "Dyspnea"},
		{"가족력(ILD/IPF/CTD) 있음", "가족력(ILD/IPF/CTD) 있음"},
		{"체중 감소/식욕 저하(최근 6개월)", "체중 감소/식욕 저하"},
		{"쉰목소리(hoarseness) 또는 삼킴 곤란", "쉰목소리(hoarseness) 또는 삼킴 곤란"},
		{"흡입제(ICS/LABA/LAMA 등) 규칙적 사용", "흡입제 규칙적 사용"},
		{"CBC abnormality", "CBC abnormality"},
		{"(기침)", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanLabel(tt.in), tt.in)
	}
}

func TestCompileEmpty(t *testing.T) {
	for _, name := range Templates {
		assert.Equal(t, Trailer+"\n", CompileTemplate(name, Selection{}), name)
	}
}

func TestCompile(t *testing.T) {
	sel := Selection{
		Items: map[string]Value{
			"Cough (기침)":          Yes,
			"Sputum (가래)":         No,
			"Fever/chill (발열/오한)": Unanswered,
			"CXR abnl":            Yes,
			"입원":                  No,
		},
		MMRC:     intp(2),
		FollowUp: "3m",
	}

	got := CompileTemplate(TemplateGeneral, sel)

	want := strings.Join([]string{
		"Cough +, Sputum -, mMRC 2",
		"",
		"CXR abnl +",
		"",
		"입원 -, OPD f/u 3m",
		"",
		Trailer,
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestCompileSpecialFieldsOnly(t *testing.T) {
	got := CompileTemplate(TemplateCOPD, Selection{MMRC: intp(0)})
	assert.Equal(t, "mMRC 0\n\n"+Trailer+"\n", got)
}

func TestCompileSkipsLabelsCleanedToNothing(t *testing.T) {
	sections := []Section{{Title: "x", Items: []string{"(기침)", "Cough (기침)"}}}
	sel := Selection{Items: map[string]Value{"(기침)": Yes, "Cough (기침)": No}}
	assert.Equal(t, "Cough -\n\n"+Trailer+"\n", Compile(sections, sel))
}

func TestCompileIgnoresOutOfRangeMMRC(t *testing.T) {
	assert.Equal(t, Trailer+"\n", CompileTemplate(TemplateGeneral, Selection{MMRC: intp(7)}))
}

func TestSelectionValidate(t *testing.T) {
	assert.NoError(t, Selection{MMRC: intp(4), FollowUp: "1wk"}.Validate())

	var verr *domain.ValidationError
	require.ErrorAs(t, Selection{MMRC: intp(5)}.Validate(), &verr)
	assert.Equal(t, "mmrc", verr.Field)
	require.ErrorAs(t, Selection{FollowUp: "2y"}.Validate(), &verr)
	assert.Equal(t, "follow_up", verr.Field)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, Yes, ParseValue(" YES "))
	assert.Equal(t, No, ParseValue("-"))
	assert.Equal(t, Unanswered, ParseValue(""))
	assert.Equal(t, Unanswered, ParseValue("maybe"))
}

func TestSectionsFor(t *testing.T) {
	titles := func(secs []Section) []string {
		var out []string
		for _, s := range secs {
			out = append(out, s.Title)
		}
		return out
	}

	assert.Equal(t, []string{"현재 증상", "약제/부작용", "Lab/영상", "Further Plan"}, titles(SectionsFor(TemplateGeneral)))
	assert.Equal(t, []string{"현재 증상", "ILD 초진 추가", "약제/부작용", "Lab/영상", "Further Plan"}, titles(SectionsFor(TemplateILDNew)))
	assert.Equal(t, "ILD 재진 추가", SectionsFor(TemplateILDFU)[1].Title)
	assert.Equal(t, "폐암 추가", SectionsFor(TemplateLungCa)[1].Title)
	assert.Equal(t, "COPD 추가", SectionsFor(TemplateCOPD)[1].Title)
	assert.Equal(t, SectionsFor(TemplateGeneral), SectionsFor("unknown"))
	assert.False(t, KnownTemplate("unknown"))

	secs := SectionsFor(TemplateCOPD)
	assert.True(t, secs[0].MMRC)
	assert.True(t, secs[len(secs)-1].FollowUp)
	assert.Len(t, secs[1].Items, 14)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "IPF", Snippet(domain.Rule{Name: " IPF "}))
	assert.Equal(t, "IPF: 첫 줄", Snippet(domain.Rule{Name: "IPF", Advice: "\n첫 줄\n둘째 줄"}))
	assert.Equal(t, "첫 줄", Snippet(domain.Rule{Advice: "첫 줄"}))

	long := strings.Repeat("가", 150)
	got := Snippet(domain.Rule{Name: "n", Advice: long})
	assert.Equal(t, "n: "+strings.Repeat("가", 140)+"…", got)
}

func TestNote(t *testing.T) {
	n := NewNote()
	assert.Equal(t, "S:\n\nO:\n\nA:\n\nP:\n", n.Render())

	require.NoError(t, n.Add(Subjective, "cough"))
	require.NoError(t, n.Add(Subjective, "sputum"))
	require.NoError(t, n.AddRule(PlanPart, domain.Rule{Name: "IPF", Advice: "nintedanib"}))
	assert.Equal(t, "S:\n- cough\n- sputum\n\nO:\n\nA:\n\nP:\n- IPF: nintedanib\n", n.Render())

	require.NoError(t, n.Move(Subjective, 1, -1))
	assert.Equal(t, []string{"sputum", "cough"}, n.Items(Subjective))
	require.NoError(t, n.Move(Subjective, 0, -1))
	assert.Equal(t, []string{"sputum", "cough"}, n.Items(Subjective))

	require.NoError(t, n.Remove(Subjective, 0))
	assert.Equal(t, []string{"cough"}, n.Items(Subjective))
	assert.ErrorIs(t, n.Remove(Subjective, 3), domain.ErrInvalidInput)

	var verr *domain.ValidationError
	assert.ErrorAs(t, n.Add("X", "nope"), &verr)

	n.Clear()
	assert.Empty(t, n.Items(Subjective))
	assert.Equal(t, "S:\n\nO:\n\nA:\n\nP:\n", n.Render())
}

func TestMatchTemplate(t *testing.T) {
	tests := []struct {
		template, category string
		want               bool
	}{
		{"", "", true},
		{"", "ILD", true},
		{"COPD", "", false},
		{"COPD", "copd", true},
		{"ILD 초진", "ILD 초진 진료", true},
		{"ILD 재진", "ILD", true},
		{"호흡기 일반", "호흡기", true},
		{"폐암", "폐암 수술", true},
		{"COPD", "COPD/천식", true},
		{"폐암", "ILD", false},
		{"호흡기 일반", "결핵", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchTemplate(tt.template, tt.category), "%q vs %q", tt.template, tt.category)
	}
}

func TestRulesForTemplate(t *testing.T) {
	rules := []domain.Rule{
		{Category: "ILD", Name: "IPF"},
		{Category: "폐암", Name: "Stage IA1"},
		{Category: "COPD", Name: "GOLD"},
	}
	got := RulesForTemplate(rules, TemplateILDFU)
	require.Len(t, got, 1)
	assert.Equal(t, "IPF", got[0].Name)
}
