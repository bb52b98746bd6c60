package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulmo-helper/internal/bronchoscopy"
	"github.com/pulmo-helper/internal/checklist"
	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/trial"
)

func (c *cli) checklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Outpatient checklists and SOAP notes",
	}

	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "List templates and their tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range checklist.Templates {
				titles := make([]string, 0, 5)
				for _, sec := range checklist.SectionsFor(name) {
					titles = append(titles, sec.Title)
				}
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(titles, " / "))
			}
			return nil
		},
	}

	var (
		template, followUp string
		yes, no            []string
		mmrc               int
	)
	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile checklist answers into note text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !checklist.KnownTemplate(template) {
				return domain.NewValidationError("template", "must be one of "+strings.Join(checklist.Templates, ", "), template)
			}
			sel := checklist.Selection{Items: map[string]checklist.Value{}, FollowUp: followUp}
			for _, item := range no {
				sel.Items[item] = checklist.No
			}
			for _, item := range yes {
				sel.Items[item] = checklist.Yes
			}
			if cmd.Flags().Changed("mmrc") {
				sel.MMRC = &mmrc
			}
			if err := sel.Validate(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), checklist.CompileTemplate(template, sel))
			return nil
		},
	}
	cf := compileCmd.Flags()
	cf.StringVar(&template, "template", checklist.DefaultTemplate, "Template name")
	cf.StringArrayVar(&yes, "yes", nil, "Item label answered yes (repeatable)")
	cf.StringArrayVar(&no, "no", nil, "Item label answered no (repeatable)")
	cf.IntVar(&mmrc, "mmrc", 0, "mMRC grade 0-4")
	cf.StringVar(&followUp, "follow-up", "", "OPD follow-up: "+strings.Join(checklist.FollowUpChoices, ", "))

	var (
		sections     = map[string]*[]string{}
		ruleNames    []string
		noteTemplate string
	)
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Assemble a SOAP note from free text and rule snippets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.LoadErr != nil && (len(ruleNames) > 0 || noteTemplate != "") {
				return fmt.Errorf("rule table unavailable: %w", c.app.LoadErr)
			}
			note := checklist.NewNote()
			for _, sec := range checklist.SOAPSections {
				for _, text := range *sections[sec] {
					if err := note.Add(sec, text); err != nil {
						return err
					}
				}
			}
			for _, name := range ruleNames {
				e, err := c.find(name, "")
				if err != nil {
					return err
				}
				if err := note.AddRule(checklist.PlanPart, e.Rule); err != nil {
					return err
				}
			}
			if noteTemplate != "" {
				for _, r := range checklist.RulesForTemplate(c.app.Rules.Rules(), noteTemplate) {
					if err := note.AddRule(checklist.PlanPart, r); err != nil {
						return err
					}
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), note.Render())
			return nil
		},
	}
	for sec, name := range map[string]string{
		checklist.Subjective: "subjective",
		checklist.Objective:  "objective",
		checklist.Assessment: "assessment",
		checklist.PlanPart:   "plan",
	} {
		texts := new([]string)
		sections[sec] = texts
		noteCmd.Flags().StringArrayVarP(texts, name, sec, nil, name+" entry (repeatable)")
	}
	noteCmd.Flags().StringArrayVar(&ruleNames, "rule", nil, "Rule name whose snippet goes to P (repeatable)")
	noteCmd.Flags().StringVar(&noteTemplate, "template", "", "Add snippets of every rule matching this template to P")

	cmd.AddCommand(templatesCmd, compileCmd, noteCmd)
	return cmd
}

func (c *cli) bronchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bronch FILE",
		Short: "Compose a bronchoscopy report from a JSON procedure form (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("%w: %s", domain.ErrMissingResource, args[0])
				}
				defer f.Close()
				r = f
			}

			var report bronchoscopy.Report
			if err := json.NewDecoder(r).Decode(&report); err != nil {
				return fmt.Errorf("%w: bronchoscopy form: %v", domain.ErrInvalidInput, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), bronchoscopy.Compose(report))
			return nil
		},
	}
}

func (c *cli) trialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Registry and trial assignment",
	}

	var copd trial.COPDInput
	copdCmd := &cobra.Command{
		Use:   "copd",
		Short: "Assign a COPD patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := trial.AssignCOPD(copd, c.app.Status())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.Text())
			return nil
		},
	}
	copdCmd.Flags().BoolVar(&copd.NewDiagnosis, "new", false, "Newly diagnosed, post-BD FEV1/FVC < 0.7")
	copdCmd.Flags().BoolVar(&copd.HomeOxygen, "home-oxygen", false, "On home oxygen")
	copdCmd.Flags().BoolVar(&copd.ChronicCough, "cough", false, "Unexplained cough for 8 weeks or more")
	copdCmd.Flags().BoolVar(&copd.RSVVaccine, "rsv", false, "Age 50 or more, RSV vaccine candidate")
	copdCmd.Flags().StringVar(&copd.SIT, "sit", "", "SIT: severe, maintenance or bronchiectasis")

	var asthma trial.AsthmaInput
	asthmaCmd := &cobra.Command{
		Use:   "asthma",
		Short: "Assign an asthma patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), trial.AssignAsthma(asthma, c.app.Status()).Text())
			return nil
		},
	}
	asthmaCmd.Flags().Float64Var(&asthma.Eosinophils, "eos", 0, "Blood eosinophils (cells/uL)")
	asthmaCmd.Flags().BoolVar(&asthma.Rhinitis, "rhinitis", false, "Allergic rhinitis")
	asthmaCmd.Flags().BoolVar(&asthma.ChronicCough, "cough", false, "Chronic cough")
	asthmaCmd.Flags().BoolVar(&asthma.Uncontrolled, "uncontrolled", false, "Uncontrolled on high-dose ICS/LABA")

	otherCmd := &cobra.Command{
		Use:   "other DIAGNOSIS",
		Short: "Guide for be, cough, acute or ipf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := trial.AssignOther(args[0], c.app.Status())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.Text())
			return nil
		},
	}

	criteriaCmd := &cobra.Command{
		Use:   "criteria [QUERY]",
		Short: "Search study inclusion and exclusion criteria",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crit, err := c.app.Criteria()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if crit.Missing {
				fmt.Fprintln(out, trial.MissingCriteriaNotice)
				return nil
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			for _, cr := range crit.Search(query) {
				fmt.Fprintf(out, "[%s] %s\n", cr.Sheet, cr.Title)
				if cr.Inclusion != "" {
					fmt.Fprintln(out, "  선정: "+cr.Inclusion)
				}
				if cr.Exclusion != "" {
					fmt.Fprintln(out, "  제외: "+cr.Exclusion)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(copdCmd, asthmaCmd, otherCmd, criteriaCmd)
	return cmd
}
