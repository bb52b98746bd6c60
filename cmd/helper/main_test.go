package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/rules"
	"github.com/pulmo-helper/internal/sheet"
	"github.com/pulmo-helper/internal/trial"
)

// run executes one helper invocation against dir and returns its stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", dir)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--data-dir", dir, "--log-level", "panic"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err)
	return out
}

func TestRulesLifecycle(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "rules", "list")
	assert.Equal(t, "일치하는 규칙이 없습니다.\n", out)

	mustRun(t, dir, "rules", "add", "--category", "ILD", "--name", "IPF 진단 치료",
		"--keywords", "ipf, nintedanib", "--advice", "항섬유화제 시작\nILD 진료지침 2022")
	mustRun(t, dir, "rules", "add", "--category", "COPD", "--name", "COPD 악화", "--advice", "항생제")

	out = mustRun(t, dir, "rules", "categories")
	assert.Equal(t, domain.AllCategories+"\nCOPD\nILD\n", out)

	out = mustRun(t, dir, "rules", "search", "nintedanib")
	assert.Equal(t, "[ILD] IPF 진단 치료\n", out)

	out = mustRun(t, dir, "rules", "show", "IPF 진단 치료")
	assert.Contains(t, out, "keywords: ipf,nintedanib")
	assert.Contains(t, out, "항섬유화제 시작")
	assert.NotContains(t, out, "진료지침")

	out = mustRun(t, dir, "rules", "show", "--raw", "IPF 진단 치료")
	assert.Contains(t, out, "진료지침")

	mustRun(t, dir, "rules", "edit", "COPD 악화", "--advice", "항생제 5일")
	out = mustRun(t, dir, "rules", "show", "COPD 악화")
	assert.Contains(t, out, "항생제 5일")

	mustRun(t, dir, "rules", "delete", "COPD 악화")
	out = mustRun(t, dir, "rules", "list", "--category", "COPD")
	assert.Equal(t, "일치하는 규칙이 없습니다.\n", out)

	_, err := run(t, dir, "rules", "show", "sarcoidosis")
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)

	_, err = run(t, dir, "rules", "add", "--category", "ILD")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRulesExport(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "rules", "add", "--category", "ILD", "--name", "HP 진단 치료", "--advice", "노출 회피")

	mustRun(t, dir, "rules", "export", "rules.json")
	data, err := os.ReadFile(filepath.Join(dir, "exports", "rules.json"))
	require.NoError(t, err)
	var exported []domain.Rule
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "HP 진단 치료", exported[0].Name)

	dbPath := filepath.Join(dir, "copy.db")
	mustRun(t, dir, "rules", "export", dbPath)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	store, err := rules.NewSQLiteStore(dbPath, logger)
	require.NoError(t, err)
	defer store.Close()
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, exported[0].Name, loaded[0].Name)
	assert.Equal(t, "노출 회피", loaded[0].Advice)

	out := mustRun(t, dir, "--backend", "sqlite", "--rules", dbPath, "rules", "list")
	assert.Equal(t, "[ILD] HP 진단 치료\n", out)

	_, err = run(t, dir, "rules", "export", "rules.csv")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRulesMalformedTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, sheet.WriteAtomic(filepath.Join(dir, "rules.xlsx"),
		sheet.Sheet{Name: "rules", Rows: [][]string{{"category", "name"}}}))

	_, err := run(t, dir, "rules", "list")
	assert.ErrorIs(t, err, domain.ErrMalformedSchema)

	// Calculators still run without a rule table.
	out := mustRun(t, dir, "ariscat", "--age", "40")
	assert.Contains(t, out, "ARISCAT 점수: 0")
}

func TestTNM(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "rules", "add", "--category", "폐암", "--name", "Stage IA2", "--advice", "수술적 절제")

	out := mustRun(t, dir, "tnm", "--size", "1.5")
	assert.Contains(t, out, "T1b N0 M0 → Stage IA2")
	assert.Contains(t, out, "[폐암] Stage IA2\n수술적 절제")
}

func TestILD(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "rules", "add", "--category", "ILD", "--name", "ILD 급성악화", "--advice", "고용량 스테로이드")

	out := mustRun(t, dir, "ild", "ae", "--sudden", "--ggo", "--not-hf")
	assert.Contains(t, out, "AE-IPF 의심")
	assert.Contains(t, out, "[ILD] ILD 급성악화")

	out = mustRun(t, dir, "ild", "ae", "--sudden")
	assert.NotContains(t, out, "[ILD]")

	out = mustRun(t, dir, "ild", "chronic", "--hrct", "Fibrotic", "--uip", "alternative")
	assert.Contains(t, out, "진단: ")
	assert.Contains(t, out, "조직검사 고려:")

	_, err := run(t, dir, "ild", "chronic", "--hrct", "honeycomb")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestOperability(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "ariscat", "--age", "85", "--spo2", "abc", "--incision", "intrathoracic", "--duration", "200", "--emergency")
	assert.Contains(t, out, "not scored")
	assert.Contains(t, out, "High")

	_, err := run(t, dir, "ariscat", "--incision", "neck")
	assert.Error(t, err)

	out = mustRun(t, dir, "ppo", "--fev1", "60", "--lobes", "RLL")
	assert.Contains(t, out, "ppoDLCO: not computed")

	_, err = run(t, dir, "ppo", "--total", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChecklist(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "checklist", "templates")
	assert.Contains(t, out, "COPD: 현재 증상 / COPD 추가 /")

	out = mustRun(t, dir, "checklist", "compile", "--template", "COPD", "--yes", "Cough (기침)", "--mmrc", "2", "--follow-up", "3m")
	assert.Contains(t, out, "Cough +, mMRC 2")
	assert.Contains(t, out, "OPD f/u 3m")

	_, err := run(t, dir, "checklist", "compile", "--mmrc", "7")
	assert.Error(t, err)

	mustRun(t, dir, "rules", "add", "--category", "COPD", "--name", "COPD 흡입제", "--advice", "LAMA/LABA 유지\n6개월 후 재평가")
	out = mustRun(t, dir, "checklist", "note", "-S", "기침 2주", "-A", "COPD", "--template", "COPD")
	assert.Equal(t, "S:\n- 기침 2주\n\nO:\n\nA:\n- COPD\n\nP:\n- COPD 흡입제: LAMA/LABA 유지\n", out)
}

func TestBronch(t *testing.T) {
	dir := t.TempDir()
	form := filepath.Join(dir, "form.json")
	require.NoError(t, os.WriteFile(form, []byte(`{}`), 0644))

	out := mustRun(t, dir, "bronch", form)
	assert.Contains(t, out, "2. Findings:")

	_, err := run(t, dir, "bronch", filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, domain.ErrMissingResource)

	require.NoError(t, os.WriteFile(form, []byte(`{`), 0644))
	_, err = run(t, dir, "bronch", form)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTrial(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "trial", "copd", "--new")
	assert.Contains(t, out, "KOCOSS")
	assert.Contains(t, out, "해당 사항 없음")

	out = mustRun(t, dir, "trial", "asthma", "--eos", "450")
	assert.Contains(t, out, trial.DefaultStatus[trial.KeyAsthmaEos])

	out = mustRun(t, dir, "trial", "other", "ipf")
	assert.Contains(t, out, trial.DefaultStatus[trial.KeyEtcIPF])

	_, err := run(t, dir, "trial", "other", "flu")
	assert.Error(t, err)

	out = mustRun(t, dir, "trial", "criteria")
	assert.Equal(t, trial.MissingCriteriaNotice+"\n", out)
}

func TestRulesQueryIgnoresCategory(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "rules", "add", "--category", "Sarcoidosis", "--name", "Stage II", "--advice", "관찰")

	out := mustRun(t, dir, "rules", "list", "--query", "sarcoidosis")
	assert.Equal(t, "일치하는 규칙이 없습니다.\n", out)

	out = mustRun(t, dir, "rules", "list", "--query", "관찰")
	assert.Equal(t, "[Sarcoidosis] Stage II\n", out)

	list, _, err := newRootCmd().Find([]string{"rules", "list"})
	require.NoError(t, err)
	usage := list.Flags().Lookup("query").Usage
	assert.Equal(t, "Search text over name, keywords and advice", usage)
}
