// Package service links the clinical calculators to the guidance held in the
// rule table.
package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/ild"
	"github.com/pulmo-helper/internal/rules"
	"github.com/pulmo-helper/internal/staging"
)

// LinkedRule is a rule opened for a calculator result. Advice has its
// guideline source lines stripped.
type LinkedRule struct {
	Handle   rules.Handle `json:"handle"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Keywords []string     `json:"keywords,omitempty"`
	Advice   string       `json:"advice"`
}

func linked(e rules.Entry) LinkedRule {
	return LinkedRule{
		Handle:   e.Handle,
		Name:     e.Rule.Name,
		Category: e.Rule.Category,
		Keywords: append([]string(nil), e.Rule.Keywords...),
		Advice:   rules.StripSources(e.Rule.Advice),
	}
}

// StagingAdvice is a TNM result with the stage rule, when present.
type StagingAdvice struct {
	staging.Result
	Rule *LinkedRule `json:"rule,omitempty"`
}

// AEAdvice is an acute exacerbation verdict with the rules to open.
type AEAdvice struct {
	ild.AEResult
	Rules []LinkedRule `json:"rules"`
}

// ChronicAdvice is a chronic differential diagnosis with its rule, when present.
type ChronicAdvice struct {
	ild.Diagnosis
	Rule *LinkedRule `json:"rule,omitempty"`
}

// Advisor runs the calculators and resolves their rule names against a repository.
type Advisor struct {
	repo   *rules.Repository
	logger *logrus.Logger
}

// NewAdvisor creates an advisor over repo.
func NewAdvisor(repo *rules.Repository, logger *logrus.Logger) *Advisor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Advisor{repo: repo, logger: logger}
}

// Rule looks a rule up by name with an optional preferred category.
func (a *Advisor) Rule(name, preferCategory string) (LinkedRule, error) {
	e, ok := a.repo.Find(name, preferCategory)
	if !ok {
		return LinkedRule{}, fmt.Errorf("rule %q: %w", name, domain.ErrRuleNotFound)
	}
	return linked(e), nil
}

func (a *Advisor) lookup(name, preferCategory string) *LinkedRule {
	r, err := a.Rule(name, preferCategory)
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"rule":     name,
			"category": preferCategory,
		}).Debug("No rule linked")
		return nil
	}
	return &r
}

// StageTNM stages in and links the rule named after the stage.
func (a *Advisor) StageTNM(in staging.Input) StagingAdvice {
	res := staging.Stage(in)
	a.logger.WithFields(logrus.Fields{
		"t":     res.T,
		"n":     res.N,
		"m":     res.M,
		"stage": res.Stage,
	}).Debug("TNM staged")
	return StagingAdvice{Result: res, Rule: a.lookup(res.RuleName, "")}
}

// AcuteExacerbation classifies f. When AE-IPF is likely it links the first
// acute exacerbation rule present in the table followed by the IPF rule; a
// missing acute exacerbation rule does not suppress the IPF rule.
func (a *Advisor) AcuteExacerbation(f ild.AEFlags) AEAdvice {
	res := ild.ClassifyAcuteExacerbation(f)
	advice := AEAdvice{AEResult: res, Rules: []LinkedRule{}}
	if !res.Likely() {
		return advice
	}

	for _, name := range ild.AERuleSequence {
		if !a.repo.HasName(name) {
			continue
		}
		if r := a.lookup(name, ild.RuleCategory); r != nil {
			advice.Rules = append(advice.Rules, *r)
		}
		break
	}
	ipf := ild.RuleNameFor(ild.IPF)
	if a.repo.HasName(ipf) {
		if r := a.lookup(ipf, ild.RuleCategory); r != nil {
			advice.Rules = append(advice.Rules, *r)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"criteria_met": res.Met,
		"rules":        len(advice.Rules),
	}).Info("AE-IPF likely")
	return advice
}

// ChronicDifferential classifies flags and links the diagnosis rule,
// preferring the ILD category.
func (a *Advisor) ChronicDifferential(flags ild.ChronicFlags) ChronicAdvice {
	d := ild.ClassifyChronicDifferential(flags)
	return ChronicAdvice{Diagnosis: d, Rule: a.lookup(d.RuleName, ild.RuleCategory)}
}
