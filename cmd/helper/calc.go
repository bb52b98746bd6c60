package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/ild"
	"github.com/pulmo-helper/internal/operability"
	"github.com/pulmo-helper/internal/service"
	"github.com/pulmo-helper/internal/staging"
)

func printLinked(out io.Writer, r service.LinkedRule) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "["+r.Category+"] "+r.Name)
	fmt.Fprintln(out, r.Advice)
}

func (c *cli) tnmCmd() *cobra.Command {
	var in staging.Input
	cmd := &cobra.Command{
		Use:   "tnm",
		Short: "Stage NSCLC by TNM 8th edition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			advice := c.app.Advisor.StageTNM(in)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s → %s\n", advice.T, advice.N, advice.M, advice.Stage)
			fmt.Fprintln(out, advice.NDescription)
			fmt.Fprintln(out, advice.MDescription)
			if advice.Rule != nil {
				printLinked(out, *advice.Rule)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Size, "size", "", "Largest tumor diameter in cm")
	f.BoolVar(&in.T.MinimallyInvasive, "mia", false, "Minimally invasive adenocarcinoma")
	f.BoolVar(&in.T.MainBronchus, "main-bronchus", false, "Main bronchus involvement")
	f.BoolVar(&in.T.VisceralPleura, "visceral-pleura", false, "Visceral pleural invasion")
	f.BoolVar(&in.T.Atelectasis, "atelectasis", false, "Atelectasis or obstructive pneumonitis")
	f.BoolVar(&in.T.ChestWall, "chest-wall", false, "Chest wall, phrenic nerve or parietal pericardium invasion")
	f.BoolVar(&in.T.SameLobeNodule, "same-lobe-nodule", false, "Separate nodule in the same lobe")
	f.BoolVar(&in.T.DiffLobeNodule, "diff-lobe-nodule", false, "Separate nodule in a different ipsilateral lobe")
	f.BoolVar(&in.T.CriticalOrgans, "critical-organs", false, "Diaphragm, mediastinum, heart, great vessels or similar invasion")
	f.BoolVar(&in.N.IpsilateralHilar, "n1", false, "Ipsilateral peribronchial or hilar nodes")
	f.BoolVar(&in.N.IpsilateralMediastinal, "n2", false, "Ipsilateral mediastinal or subcarinal nodes")
	f.BoolVar(&in.N.Contralateral, "contralateral-nodes", false, "Contralateral mediastinal or hilar nodes")
	f.BoolVar(&in.N.Supraclavicular, "supraclavicular", false, "Scalene or supraclavicular nodes")
	f.BoolVar(&in.M.ContralateralLung, "contralateral-lung", false, "Contralateral lung nodule")
	f.BoolVar(&in.M.PleuralPericardial, "pleural-pericardial", false, "Pleural or pericardial nodules or effusion")
	f.BoolVar(&in.M.SingleExtrathoracic, "single-extrathoracic", false, "Single extrathoracic metastasis")
	f.BoolVar(&in.M.MultiExtrathoracic, "multi-extrathoracic", false, "Multiple extrathoracic metastases")
	return cmd
}

func (c *cli) ildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ild",
		Short: "Interstitial lung disease classifiers",
	}

	var ae ild.AEFlags
	aeCmd := &cobra.Command{
		Use:   "ae",
		Short: "Apply the simplified AE-IPF criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			advice := c.app.Advisor.AcuteExacerbation(ae)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, advice.Summary)
			for _, g := range advice.Guidance {
				fmt.Fprintln(out, "- "+g)
			}
			for _, r := range advice.Rules {
				printLinked(out, r)
			}
			return nil
		},
	}
	aeCmd.Flags().BoolVar(&ae.Sudden30Days, "sudden", false, "Acute worsening within 30 days")
	aeCmd.Flags().BoolVar(&ae.KnownIPF, "known-ipf", false, "IPF diagnosed or strongly suspected")
	aeCmd.Flags().BoolVar(&ae.NewBilateralGGO, "ggo", false, "New bilateral GGO or consolidation")
	aeCmd.Flags().BoolVar(&ae.NotHFOverload, "not-hf", false, "Not explained by heart failure or fluid overload")

	var flags ild.ChronicFlags
	chronicCmd := &cobra.Command{
		Use:   "chronic",
		Short: "Walk the chronic ILD differential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.HRCT = strings.ToLower(strings.TrimSpace(flags.HRCT))
			flags.UIP = strings.ToLower(strings.TrimSpace(flags.UIP))
			if err := oneOf("hrct", flags.HRCT, "", ild.Fibrotic, ild.NonFibrotic); err != nil {
				return err
			}
			if err := oneOf("uip", flags.UIP, "", ild.UIP, ild.ProbableUIP, ild.Indeterminate, ild.Alternative); err != nil {
				return err
			}

			advice := c.app.Advisor.ChronicDifferential(flags)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "진단: "+advice.Name)
			fmt.Fprintln(out, advice.Rationale)
			if advice.BiopsyAdvised {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "조직검사 고려:")
				for _, p := range advice.BiopsyPoints {
					fmt.Fprintln(out, "- "+p)
				}
			}
			if advice.Rule != nil {
				printLinked(out, *advice.Rule)
			}
			return nil
		},
	}
	cf := chronicCmd.Flags()
	cf.StringVar(&flags.HRCT, "hrct", "", "fibrotic or nonfibrotic (default fibrotic)")
	cf.StringVar(&flags.UIP, "uip", "", "uip, probable, indeterminate or alternative (default indeterminate)")
	cf.BoolVar(&flags.CTDClue, "ctd", false, "Connective tissue disease clues")
	cf.BoolVar(&flags.HPClue, "hp", false, "Exposure or HP clues")
	cf.BoolVar(&flags.SmokingRelated, "smoking", false, "Smoking related features")
	cf.BoolVar(&flags.OPPattern, "op", false, "Organizing pneumonia pattern")
	cf.BoolVar(&flags.DADLike, "dad", false, "DAD or ARDS-like acute course")
	cf.BoolVar(&flags.LIPClue, "lip", false, "LIP clues")
	cf.BoolVar(&flags.PPFEClue, "ppfe", false, "Upper lobe pleuroparenchymal fibroelastosis clues")

	cmd.AddCommand(aeCmd, chronicCmd)
	return cmd
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return domain.NewValidationError(field, "must be one of "+strings.Join(allowed[1:], ", "), value)
}

func (c *cli) ariscatCmd() *cobra.Command {
	var (
		age, spo2, duration, incision string
		in                            operability.ARISCATInput
	)
	cmd := &cobra.Command{
		Use:   "ariscat",
		Short: "Score ARISCAT postoperative pulmonary complication risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Incision = strings.ToLower(strings.TrimSpace(incision))
			if err := oneOf("incision", in.Incision, "", operability.Peripheral, operability.UpperAbdominal, operability.Intrathoracic); err != nil {
				return err
			}
			in.Age = operability.ParseNumber(age)
			in.SpO2 = operability.ParseNumber(spo2)
			in.DurationMinutes = operability.ParseNumber(duration)

			fmt.Fprintln(cmd.OutOrStdout(), operability.Score(in).Summary())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&age, "age", "", "Age in years")
	f.StringVar(&spo2, "spo2", "", "Preoperative SpO2 in percent")
	f.StringVar(&duration, "duration", "", "Surgery duration in minutes")
	f.StringVar(&incision, "incision", "", "peripheral, upper_abdominal or intrathoracic")
	f.BoolVar(&in.RecentInfection, "infection", false, "Respiratory infection in the last month")
	f.BoolVar(&in.Anemia, "anemia", false, "Preoperative Hb below 10 g/dL")
	f.BoolVar(&in.Emergency, "emergency", false, "Emergency procedure")
	return cmd
}

func (c *cli) ppoCmd() *cobra.Command {
	var (
		fev1, dlco, total, resected string
		lobes                       []string
	)
	cmd := &cobra.Command{
		Use:   "ppo",
		Short: "Predict postoperative FEV1 and DLCO",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := operability.Calculate(operability.PpoRequest{
				FEV1:          operability.ParseNumber(fev1),
				DLCO:          operability.ParseNumber(dlco),
				TotalSegments: operability.ParseNumber(total),
				Resected:      operability.ParseNumber(resected),
				Lobes:         lobes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(res.Details, "\n"))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fev1, "fev1", "", "Preoperative FEV1 (% predicted)")
	f.StringVar(&dlco, "dlco", "", "Preoperative DLCO (% predicted)")
	f.StringVar(&total, "total", "", "Total functional segments (default 19)")
	f.StringVar(&resected, "resected", "", "Resected segments")
	f.StringSliceVar(&lobes, "lobes", nil, "Resected lobes, overrides --resected (RUL,RML,RLL,LUL,LLL)")
	return cmd
}
