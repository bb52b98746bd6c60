package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/rules"
)

func (c *cli) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Browse and maintain the rule table",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(cmd); err != nil {
				return err
			}
			if c.app.LoadErr != nil {
				return fmt.Errorf("rule table unavailable: %w", c.app.LoadErr)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List rules, optionally filtered by category and text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			query, _ := cmd.Flags().GetString("query")
			return c.printView(cmd, c.app.Rules.Query(category, query))
		},
	}
	listCmd.Flags().String("category", "", "Exact category (blank or 전체 for all)")
	listCmd.Flags().String("query", "", "Search text over name, keywords and advice")

	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search every rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printView(cmd, c.app.Rules.Query("", args[0]))
		},
	}

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, cat := range c.app.Rules.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), cat)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a rule's advice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			raw, _ := cmd.Flags().GetBool("raw")
			e, err := c.find(args[0], category)
			if err != nil {
				return err
			}
			advice := e.Rule.Advice
			if !raw {
				advice = rules.StripSources(advice)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, e.Rule.Label())
			if len(e.Rule.Keywords) > 0 {
				fmt.Fprintln(out, "keywords: "+domain.JoinKeywords(e.Rule.Keywords))
			}
			fmt.Fprintln(out, advice)
			return nil
		},
	}
	showCmd.Flags().String("category", "", "Category searched first")
	showCmd.Flags().Bool("raw", false, "Keep source citation lines")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a rule and save the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := ruleFromFlags(cmd)
			if _, err := c.app.Rules.Add(rule); err != nil {
				return err
			}
			if err := c.app.Rules.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", rule.Label())
			return nil
		},
	}
	ruleFlags(addCmd)

	editCmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Replace the fields of an existing rule and save the table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.find(args[0], "")
			if err != nil {
				return err
			}
			rule := e.Rule.Clone()
			if cmd.Flags().Changed("category") {
				rule.Category, _ = cmd.Flags().GetString("category")
			}
			if cmd.Flags().Changed("name") {
				rule.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("keywords") {
				raw, _ := cmd.Flags().GetString("keywords")
				rule.Keywords = domain.ParseKeywords(raw)
			}
			if cmd.Flags().Changed("advice") {
				rule.Advice, _ = cmd.Flags().GetString("advice")
			}
			if err := c.app.Rules.Edit(e.Handle, rule); err != nil {
				return err
			}
			if err := c.app.Rules.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", rule.Label())
			return nil
		},
	}
	ruleFlags(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a rule and save the table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			e, err := c.find(args[0], category)
			if err != nil {
				return err
			}
			if err := c.app.Rules.Delete(e.Handle); err != nil {
				return err
			}
			if err := c.app.Rules.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", e.Rule.Label())
			return nil
		},
	}
	deleteCmd.Flags().String("category", "", "Category searched first")

	exportCmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Export the rule table to .json, .xlsx or .db",
		Long:  "Export the rule table. A relative PATH is written under the data directory's exports folder.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !filepath.IsAbs(path) {
				path = filepath.Join(c.manager.ExportDir(), path)
			}
			if err := c.export(cmd, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rules to %s\n", c.app.Rules.Len(), path)
			return nil
		},
	}

	cmd.AddCommand(listCmd, searchCmd, categoriesCmd, showCmd, addCmd, editCmd, deleteCmd, exportCmd)
	return cmd
}

func ruleFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Rule category")
	cmd.Flags().String("name", "", "Rule name")
	cmd.Flags().String("keywords", "", "Comma separated keywords")
	cmd.Flags().String("advice", "", "Advice text")
}

func ruleFromFlags(cmd *cobra.Command) domain.Rule {
	category, _ := cmd.Flags().GetString("category")
	name, _ := cmd.Flags().GetString("name")
	keywords, _ := cmd.Flags().GetString("keywords")
	advice, _ := cmd.Flags().GetString("advice")
	return domain.Rule{
		Category: category,
		Name:     name,
		Keywords: domain.ParseKeywords(keywords),
		Advice:   advice,
	}
}

func (c *cli) find(name, category string) (rules.Entry, error) {
	e, ok := c.app.Rules.Find(name, category)
	if !ok {
		return rules.Entry{}, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, name)
	}
	return e, nil
}

func (c *cli) printView(cmd *cobra.Command, view rules.View) error {
	out := cmd.OutOrStdout()
	if len(view) == 0 {
		fmt.Fprintln(out, "일치하는 규칙이 없습니다.")
		return nil
	}
	for _, e := range view {
		fmt.Fprintln(out, e.Rule.Label())
	}
	return nil
}

// export writes the table in the format named by the file extension.
func (c *cli) export(cmd *cobra.Command, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	all := c.app.Rules.Rules()
	logger := c.app.Logger

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, append(data, '\n'), 0644)
	case ".xlsx":
		store, err := rules.NewXLSXStore(path, rules.WithSheetName(c.app.Config.Rules.Sheet), rules.WithXLSXLogger(logger))
		if err != nil {
			return err
		}
		return store.Save(cmd.Context(), all)
	case ".db", ".sqlite":
		store, err := rules.NewSQLiteStore(path, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(cmd.Context(), all)
	default:
		return domain.NewValidationError("path", "export path must end in .json, .xlsx or .db", path)
	}
}
