package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/bronchoscopy"
	"github.com/pulmo-helper/internal/checklist"
	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/ild"
	"github.com/pulmo-helper/internal/operability"
	"github.com/pulmo-helper/internal/rules"
	"github.com/pulmo-helper/internal/staging"
	"github.com/pulmo-helper/internal/trial"
)

// StageTNMParams defines parameters for stage_tnm tool
type StageTNMParams struct {
	SizeCM            string `json:"size_cm,omitempty" jsonschema:"largest tumor diameter in cm; blank when unknown"`
	MinimallyInvasive bool   `json:"minimally_invasive,omitempty"`
	MainBronchus      bool   `json:"main_bronchus,omitempty"`
	VisceralPleura    bool   `json:"visceral_pleura,omitempty"`
	Atelectasis       bool   `json:"atelectasis,omitempty"`
	ChestWall         bool   `json:"chest_wall,omitempty"`
	SameLobeNodule    bool   `json:"same_lobe_nodule,omitempty"`
	DiffLobeNodule    bool   `json:"diff_lobe_nodule,omitempty"`
	CriticalOrgans    bool   `json:"critical_organs,omitempty"`

	IpsilateralHilar       bool `json:"ipsilateral_hilar,omitempty"`
	IpsilateralMediastinal bool `json:"ipsilateral_mediastinal,omitempty"`
	Contralateral          bool `json:"contralateral_nodes,omitempty"`
	Supraclavicular        bool `json:"supraclavicular,omitempty"`

	ContralateralLung   bool `json:"contralateral_lung,omitempty"`
	PleuralPericardial  bool `json:"pleural_pericardial,omitempty"`
	SingleExtrathoracic bool `json:"single_extrathoracic,omitempty"`
	MultiExtrathoracic  bool `json:"multi_extrathoracic,omitempty"`
}

func (p StageTNMParams) input() staging.Input {
	return staging.Input{
		Size: p.SizeCM,
		T: staging.TFeatures{
			MinimallyInvasive: p.MinimallyInvasive,
			MainBronchus:      p.MainBronchus,
			VisceralPleura:    p.VisceralPleura,
			Atelectasis:       p.Atelectasis,
			ChestWall:         p.ChestWall,
			SameLobeNodule:    p.SameLobeNodule,
			DiffLobeNodule:    p.DiffLobeNodule,
			CriticalOrgans:    p.CriticalOrgans,
		},
		N: staging.NFeatures{
			IpsilateralHilar:       p.IpsilateralHilar,
			IpsilateralMediastinal: p.IpsilateralMediastinal,
			Contralateral:          p.Contralateral,
			Supraclavicular:        p.Supraclavicular,
		},
		M: staging.MFeatures{
			ContralateralLung:   p.ContralateralLung,
			PleuralPericardial:  p.PleuralPericardial,
			SingleExtrathoracic: p.SingleExtrathoracic,
			MultiExtrathoracic:  p.MultiExtrathoracic,
		},
	}
}

// ClassifyAEParams defines parameters for classify_ild_ae tool
type ClassifyAEParams struct {
	Sudden30Days    bool `json:"sudden_30_days,omitempty" jsonschema:"acute worsening within 30 days"`
	KnownIPF        bool `json:"known_ipf,omitempty" jsonschema:"IPF diagnosed or strongly suspected"`
	NewBilateralGGO bool `json:"new_bilateral_ggo,omitempty" jsonschema:"new bilateral GGO or consolidation on CT"`
	NotHFOverload   bool `json:"not_hf_overload,omitempty" jsonschema:"not fully explained by heart failure or fluid overload"`
}

// ClassifyChronicParams defines parameters for classify_ild_chronic tool
type ClassifyChronicParams struct {
	HRCT           string `json:"hrct,omitempty" jsonschema:"fibrotic or nonfibrotic; default fibrotic"`
	UIP            string `json:"uip,omitempty" jsonschema:"uip, probable, indeterminate or alternative; default indeterminate"`
	CTDClue        bool   `json:"ctd_clue,omitempty"`
	HPClue         bool   `json:"hp_clue,omitempty"`
	SmokingRelated bool   `json:"smoking_related,omitempty"`
	OPPattern      bool   `json:"op_pattern,omitempty"`
	DADLike        bool   `json:"dad_ards_like,omitempty"`
	LIPClue        bool   `json:"lip_clue,omitempty"`
	PPFEClue       bool   `json:"ppfe_clue,omitempty"`
}

// ScoreARISCATParams defines parameters for score_ariscat tool. Numeric fields
// are text; blank or non-numeric values are listed as not scored.
type ScoreARISCATParams struct {
	Age             string `json:"age,omitempty"`
	SpO2            string `json:"spo2,omitempty" jsonschema:"preoperative SpO2 in percent"`
	RecentInfection bool   `json:"recent_infection,omitempty"`
	Anemia          bool   `json:"anemia,omitempty" jsonschema:"preoperative Hb below 10 g/dL"`
	Incision        string `json:"incision,omitempty" jsonschema:"peripheral, upper_abdominal or intrathoracic"`
	DurationMinutes string `json:"duration_minutes,omitempty"`
	Emergency       bool   `json:"emergency,omitempty"`
}

// ComputePpoParams defines parameters for compute_ppo tool
type ComputePpoParams struct {
	FEV1          string   `json:"fev1,omitempty" jsonschema:"preoperative FEV1 in percent predicted"`
	DLCO          string   `json:"dlco,omitempty" jsonschema:"preoperative DLCO in percent predicted"`
	TotalSegments string   `json:"total_segments,omitempty" jsonschema:"default 19"`
	Resected      string   `json:"resected_segments,omitempty"`
	Lobes         []string `json:"lobes,omitempty" jsonschema:"resected lobes (RUL, RML, RLL, LUL, LLL); overrides resected_segments"`
}

func (p ComputePpoParams) request() operability.PpoRequest {
	return operability.PpoRequest{
		FEV1:          operability.ParseNumber(p.FEV1),
		DLCO:          operability.ParseNumber(p.DLCO),
		TotalSegments: operability.ParseNumber(p.TotalSegments),
		Resected:      operability.ParseNumber(p.Resected),
		Lobes:         p.Lobes,
	}
}

// CompileChecklistParams defines parameters for compile_checklist tool
type CompileChecklistParams struct {
	Template string   `json:"template,omitempty" jsonschema:"checklist template name; default 호흡기 일반"`
	Yes      []string `json:"yes,omitempty" jsonschema:"item labels answered yes"`
	No       []string `json:"no,omitempty" jsonschema:"item labels answered no"`
	MMRC     *int     `json:"mmrc,omitempty"`
	FollowUp string   `json:"follow_up,omitempty" jsonschema:"1wk, 2wk, 1m, 3m or 6m"`
}

// ChecklistResult defines the result structure for compile_checklist tool
type ChecklistResult struct {
	Template string   `json:"template"`
	Note     string   `json:"note"`
	Snippets []string `json:"rule_snippets"`
}

// SearchRulesParams defines parameters for search_rules tool
type SearchRulesParams struct {
	Category string `json:"category,omitempty" jsonschema:"exact category; blank or 전체 for all"`
	Query    string `json:"query,omitempty"`
}

// RuleSummary is one search hit.
type RuleSummary struct {
	Handle   rules.Handle `json:"handle"`
	Category string       `json:"category"`
	Name     string       `json:"name"`
	Keywords []string     `json:"keywords,omitempty"`
}

// SearchRulesResult defines the result structure for search_rules tool
type SearchRulesResult struct {
	Categories []string      `json:"categories"`
	Rules      []RuleSummary `json:"rules"`
}

// GetRuleParams defines parameters for get_rule tool
type GetRuleParams struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty" jsonschema:"category searched first"`
}

// ComposeBronchoscopyParams defines parameters for compose_bronchoscopy_report tool
type ComposeBronchoscopyParams struct {
	Report bronchoscopy.Report `json:"report"`
}

// AssignTrialParams defines parameters for assign_trial tool
type AssignTrialParams struct {
	Program string `json:"program" jsonschema:"copd, asthma, other or criteria"`

	NewDiagnosis bool   `json:"new_diagnosis,omitempty"`
	HomeOxygen   bool   `json:"home_oxygen,omitempty"`
	ChronicCough bool   `json:"chronic_cough,omitempty"`
	RSVVaccine   bool   `json:"rsv_vaccine,omitempty"`
	SIT          string `json:"sit,omitempty" jsonschema:"COPD trial: severe, maintenance or bronchiectasis"`

	Eosinophils  float64 `json:"eosinophils,omitempty" jsonschema:"blood eosinophils in cells/uL"`
	Rhinitis     bool    `json:"rhinitis,omitempty"`
	Uncontrolled bool    `json:"uncontrolled,omitempty"`

	Diagnosis string `json:"diagnosis,omitempty" jsonschema:"other program: be, cough, acute or ipf"`
	Query     string `json:"query,omitempty" jsonschema:"criteria program: search text"`
}

// CriteriaResult defines the criteria search result of assign_trial
type CriteriaResult struct {
	Notice   string            `json:"notice,omitempty"`
	Sheets   []trial.SheetInfo `json:"sheets"`
	Criteria []trial.Criterion `json:"criteria"`
}

func (s *Server) logTool(name string) *logrus.Entry {
	entry := s.logger.WithField("tool", name)
	entry.Info("Tool invoked")
	return entry
}

// handleStageTNM handles the stage_tnm tool invocation
func (s *Server) handleStageTNM(ctx context.Context, req *mcp.CallToolRequest, params StageTNMParams) (*mcp.CallToolResult, any, error) {
	s.logTool("stage_tnm")

	advice := s.app.Advisor.StageTNM(params.input())
	lines := []string{
		fmt.Sprintf("%s %s %s → %s", advice.T, advice.N, advice.M, advice.Stage),
		advice.NDescription,
		advice.MDescription,
	}
	if advice.Rule != nil {
		lines = append(lines, "", "["+advice.Rule.Category+"] "+advice.Rule.Name, advice.Rule.Advice)
	}
	return s.textResult(strings.Join(lines, "\n")), advice, nil
}

// handleClassifyAE handles the classify_ild_ae tool invocation
func (s *Server) handleClassifyAE(ctx context.Context, req *mcp.CallToolRequest, params ClassifyAEParams) (*mcp.CallToolResult, any, error) {
	s.logTool("classify_ild_ae")

	advice := s.app.Advisor.AcuteExacerbation(ild.AEFlags{
		Sudden30Days:    params.Sudden30Days,
		KnownIPF:        params.KnownIPF,
		NewBilateralGGO: params.NewBilateralGGO,
		NotHFOverload:   params.NotHFOverload,
	})
	lines := []string{advice.Summary}
	for _, g := range advice.Guidance {
		lines = append(lines, "- "+g)
	}
	for _, r := range advice.Rules {
		lines = append(lines, "", "["+r.Category+"] "+r.Name, r.Advice)
	}
	return s.textResult(strings.Join(lines, "\n")), advice, nil
}

var (
	hrctValues = []string{"", ild.Fibrotic, ild.NonFibrotic}
	uipValues  = []string{"", ild.UIP, ild.ProbableUIP, ild.Indeterminate, ild.Alternative}
)

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return domain.NewValidationError(field, "must be one of "+strings.Join(allowed[1:], ", "), value)
}

// handleClassifyChronic handles the classify_ild_chronic tool invocation
func (s *Server) handleClassifyChronic(ctx context.Context, req *mcp.CallToolRequest, params ClassifyChronicParams) (*mcp.CallToolResult, any, error) {
	s.logTool("classify_ild_chronic")

	hrct := strings.ToLower(strings.TrimSpace(params.HRCT))
	uip := strings.ToLower(strings.TrimSpace(params.UIP))
	if err := oneOf("hrct", hrct, hrctValues); err != nil {
		return s.createErrorResult(err), nil, nil
	}
	if err := oneOf("uip", uip, uipValues); err != nil {
		return s.createErrorResult(err), nil, nil
	}

	advice := s.app.Advisor.ChronicDifferential(ild.ChronicFlags{
		HRCT:           hrct,
		UIP:            uip,
		CTDClue:        params.CTDClue,
		HPClue:         params.HPClue,
		SmokingRelated: params.SmokingRelated,
		OPPattern:      params.OPPattern,
		DADLike:        params.DADLike,
		LIPClue:        params.LIPClue,
		PPFEClue:       params.PPFEClue,
	})
	lines := []string{"진단: " + advice.Name, advice.Rationale}
	if advice.BiopsyAdvised {
		lines = append(lines, "", "조직검사 고려:")
		for _, p := range advice.BiopsyPoints {
			lines = append(lines, "- "+p)
		}
	}
	if advice.Rule != nil {
		lines = append(lines, "", "["+advice.Rule.Category+"] "+advice.Rule.Name, advice.Rule.Advice)
	}
	return s.textResult(strings.Join(lines, "\n")), advice, nil
}

// handleScoreARISCAT handles the score_ariscat tool invocation
func (s *Server) handleScoreARISCAT(ctx context.Context, req *mcp.CallToolRequest, params ScoreARISCATParams) (*mcp.CallToolResult, any, error) {
	s.logTool("score_ariscat")

	incision := strings.ToLower(strings.TrimSpace(params.Incision))
	if err := oneOf("incision", incision, []string{"", operability.Peripheral, operability.UpperAbdominal, operability.Intrathoracic}); err != nil {
		return s.createErrorResult(err), nil, nil
	}

	res := operability.Score(operability.ARISCATInput{
		Age:             operability.ParseNumber(params.Age),
		SpO2:            operability.ParseNumber(params.SpO2),
		RecentInfection: params.RecentInfection,
		Anemia:          params.Anemia,
		Incision:        incision,
		DurationMinutes: operability.ParseNumber(params.DurationMinutes),
		Emergency:       params.Emergency,
	})
	return s.textResult(res.Summary()), res, nil
}

// handleComputePpo handles the compute_ppo tool invocation
func (s *Server) handleComputePpo(ctx context.Context, req *mcp.CallToolRequest, params ComputePpoParams) (*mcp.CallToolResult, any, error) {
	s.logTool("compute_ppo")

	res, err := operability.Calculate(params.request())
	if err != nil {
		return s.createErrorResult(err), nil, nil
	}
	return s.textResult(strings.Join(res.Details, "\n")), res, nil
}

// handleCompileChecklist handles the compile_checklist tool invocation
func (s *Server) handleCompileChecklist(ctx context.Context, req *mcp.CallToolRequest, params CompileChecklistParams) (*mcp.CallToolResult, any, error) {
	s.logTool("compile_checklist")

	template := strings.TrimSpace(params.Template)
	if template == "" {
		template = checklist.DefaultTemplate
	}
	if !checklist.KnownTemplate(template) {
		err := domain.NewValidationError("template", "must be one of "+strings.Join(checklist.Templates, ", "), params.Template)
		return s.createErrorResult(err), nil, nil
	}

	sel := checklist.Selection{
		Items:    make(map[string]checklist.Value, len(params.Yes)+len(params.No)),
		MMRC:     params.MMRC,
		FollowUp: params.FollowUp,
	}
	for _, item := range params.No {
		sel.Items[item] = checklist.No
	}
	for _, item := range params.Yes {
		sel.Items[item] = checklist.Yes
	}
	if err := sel.Validate(); err != nil {
		return s.createErrorResult(err), nil, nil
	}

	result := ChecklistResult{
		Template: template,
		Note:     checklist.CompileTemplate(template, sel),
		Snippets: []string{},
	}
	for _, r := range checklist.RulesForTemplate(s.app.Rules.Query("", "").Rules(), template) {
		result.Snippets = append(result.Snippets, checklist.Snippet(r))
	}
	return s.textResult(result.Note), result, nil
}

// handleSearchRules handles the search_rules tool invocation
func (s *Server) handleSearchRules(ctx context.Context, req *mcp.CallToolRequest, params SearchRulesParams) (*mcp.CallToolResult, any, error) {
	entry := s.logTool("search_rules")
	if err := s.app.LoadErr; err != nil {
		return s.createErrorResult(err), nil, nil
	}

	view := s.app.Rules.Query(strings.TrimSpace(params.Category), params.Query)
	result := SearchRulesResult{Categories: s.app.Rules.Categories(), Rules: make([]RuleSummary, 0, len(view))}
	lines := make([]string, 0, len(view))
	for _, e := range view {
		result.Rules = append(result.Rules, RuleSummary{
			Handle:   e.Handle,
			Category: e.Rule.Category,
			Name:     e.Rule.Name,
			Keywords: e.Rule.Keywords,
		})
		lines = append(lines, e.Rule.Label())
	}
	entry.WithField("hits", len(view)).Debug("Rules searched")

	if len(lines) == 0 {
		return s.textResult("일치하는 규칙이 없습니다."), result, nil
	}
	return s.textResult(strings.Join(lines, "\n")), result, nil
}

// handleGetRule handles the get_rule tool invocation
func (s *Server) handleGetRule(ctx context.Context, req *mcp.CallToolRequest, params GetRuleParams) (*mcp.CallToolResult, any, error) {
	s.logTool("get_rule")
	if err := s.app.LoadErr; err != nil {
		return s.createErrorResult(err), nil, nil
	}
	if strings.TrimSpace(params.Name) == "" {
		return s.createErrorResult(domain.NewValidationError("name", "name is required", params.Name)), nil, nil
	}

	r, err := s.app.Advisor.Rule(params.Name, strings.TrimSpace(params.Category))
	if err != nil {
		return s.createErrorResult(err), nil, nil
	}
	return s.textResult("[" + r.Category + "] " + r.Name + "\n" + r.Advice), r, nil
}

// handleComposeBronchoscopy handles the compose_bronchoscopy_report tool invocation
func (s *Server) handleComposeBronchoscopy(ctx context.Context, req *mcp.CallToolRequest, params ComposeBronchoscopyParams) (*mcp.CallToolResult, any, error) {
	s.logTool("compose_bronchoscopy_report")

	text := bronchoscopy.Compose(params.Report)
	return s.textResult(text), map[string]string{"report": text}, nil
}

// handleAssignTrial handles the assign_trial tool invocation
func (s *Server) handleAssignTrial(ctx context.Context, req *mcp.CallToolRequest, params AssignTrialParams) (*mcp.CallToolResult, any, error) {
	s.logTool("assign_trial").WithField("program", params.Program).Debug("Assigning")

	switch strings.ToLower(strings.TrimSpace(params.Program)) {
	case "copd":
		a, err := trial.AssignCOPD(trial.COPDInput{
			NewDiagnosis: params.NewDiagnosis,
			HomeOxygen:   params.HomeOxygen,
			ChronicCough: params.ChronicCough,
			RSVVaccine:   params.RSVVaccine,
			SIT:          params.SIT,
		}, s.app.Status())
		if err != nil {
			return s.createErrorResult(err), nil, nil
		}
		return s.textResult(a.Text()), a, nil

	case "asthma":
		a := trial.AssignAsthma(trial.AsthmaInput{
			Eosinophils:  params.Eosinophils,
			Rhinitis:     params.Rhinitis,
			ChronicCough: params.ChronicCough,
			Uncontrolled: params.Uncontrolled,
		}, s.app.Status())
		return s.textResult(a.Text()), a, nil

	case "other":
		a, err := trial.AssignOther(params.Diagnosis, s.app.Status())
		if err != nil {
			return s.createErrorResult(err), nil, nil
		}
		return s.textResult(a.Text()), a, nil

	case "criteria":
		c, err := s.app.Criteria()
		if err != nil {
			return s.createErrorResult(err), nil, nil
		}
		result := CriteriaResult{Sheets: c.Sheets, Criteria: c.Search(params.Query)}
		if c.Missing {
			result.Notice = trial.MissingCriteriaNotice
			return s.textResult(result.Notice), result, nil
		}
		return s.jsonResult(result), result, nil

	default:
		err := domain.NewValidationError("program", "must be one of copd, asthma, other, criteria", params.Program)
		return s.createErrorResult(err), nil, nil
	}
}

func (s *Server) textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *Server) jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.createErrorResult(err)
	}
	return s.textResult(string(data))
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(err error) *mcp.CallToolResult {
	toolErr := domain.NewToolError(domain.CodeFor(err), err.Error(), "")
	s.logger.WithFields(logrus.Fields{
		"code":  toolErr.Code,
		"error": err,
	}).Warn("Tool call failed")

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Error: %s - %s", toolErr.Code, toolErr.Message)},
		},
		IsError: true,
	}
}
