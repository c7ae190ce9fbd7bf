package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "challan-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "challan")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/challan")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runChallan runs the binary from an empty working directory so no stray challan.yaml
// or .env is picked up.
func runChallan(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func stageExports(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", src))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestVersion(t *testing.T) {
	out, err := runChallan(t, nil, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}

func TestInit_WritesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	out, err := runChallan(t, nil, "init", dir)
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "challan.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "max_header_offset: 20")
	assert.Contains(t, contents, "payment_date: Payment Date")
	assert.Contains(t, contents, "prefix: ANPR_payment_details")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runChallan(t, nil, "init", dir)
	require.NoError(t, err)

	out, err := runChallan(t, nil, "init", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runChallan(t, nil, "init", dir, "--force")
	assert.NoError(t, err)
}

func TestReport_DailyAndMonthly(t *testing.T) {
	dir := stageExports(t, map[string]string{
		"a_payments.csv": "payments_offset3.csv",
		"b_broken.csv":   "no_header.csv",
	})

	out, err := runChallan(t, nil, "report", dir, "--daily", "--monthly")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Processed 2 files (1 skipped)")
	assert.Contains(t, out, "Reports generated in "+filepath.Join(dir, "Reports"))
	assert.Contains(t, out, "Valid header not found in b_broken.csv")

	daily := filepath.Join(dir, "Reports", "ANPR_payment_details_daily.xlsx")
	f, err := excelize.OpenFile(daily)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Daily")
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "1300", last[len(last)-1])

	assert.FileExists(t, filepath.Join(dir, "Reports", "ANPR_payment_details_monthly.xlsx"))

	log, err := os.ReadFile(filepath.Join(dir, "Reports", "processing-log.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "file_skipped")
	assert.Contains(t, string(log), "Done processing file: a_payments.csv")
}

func TestReport_CustomRangeAndMetrics(t *testing.T) {
	dir := stageExports(t, map[string]string{"payments.csv": "payments_offset3.csv"})
	outDir := filepath.Join(t.TempDir(), "out")
	promFile := filepath.Join(t.TempDir(), "challan.prom")

	out, err := runChallan(t, nil, "report", dir, "--start", "2021-01-01", "--end", "2021-01-31",
		"--out", outDir, "--metrics-file", promFile)
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(outDir, "ANPR_payment_details_2021-01-01_to_2021-01-31.xlsx"))

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `challan_batch_reports_total{kind="custom",result="written"} 1`)
	assert.Contains(t, string(data), "challan_batch_records_total 3")
}

func TestReport_NothingSelected(t *testing.T) {
	dir := stageExports(t, map[string]string{"payments.csv": "payments_offset3.csv"})
	out, err := runChallan(t, nil, "report", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "configuration: no report selected")
	assert.NoDirExists(t, filepath.Join(dir, "Reports"))
}

func TestReport_InvertedWindow(t *testing.T) {
	dir := t.TempDir()
	out, err := runChallan(t, nil, "report", dir, "--start", "2021-02-01", "--end", "2021-01-01")
	assert.Error(t, err)
	assert.Contains(t, out, "is after end date")
}

func TestReport_StartWithoutEnd(t *testing.T) {
	out, err := runChallan(t, nil, "report", t.TempDir(), "--start", "2021-02-01")
	assert.Error(t, err)
	assert.Contains(t, out, "end")
}

func TestReport_EnvOverride(t *testing.T) {
	dir := stageExports(t, map[string]string{"payments.csv": "payments_offset3.csv"})
	out, err := runChallan(t, []string{"CHALLAN_OUTPUT_DIR=Summaries", "CHALLAN_OUTPUT_PREFIX=fines"},
		"report", dir, "--monthly")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(dir, "Summaries", "fines_monthly.xlsx"))
}

func TestReport_MissingExplicitConfig(t *testing.T) {
	out, err := runChallan(t, nil, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "report", t.TempDir(), "--daily")
	assert.Error(t, err)
	assert.Contains(t, out, "reading config")
}

func TestStatus_File(t *testing.T) {
	dir := stageExports(t, map[string]string{"challans.csv": "status_challans.csv"})

	out, err := runChallan(t, nil, "status", filepath.Join(dir, "challans.csv"), "--monthly")
	require.NoError(t, err, out)

	path := filepath.Join(dir, "Reports", "ANPR_status_report_monthly.xlsx")
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 5) // two header bands, two months, totals
	assert.Equal(t, "2021-01", rows[2][0])
	assert.Equal(t, "Total", rows[4][0])
}

func TestMerge(t *testing.T) {
	dir := stageExports(t, map[string]string{
		"a.csv": "payments_offset3.csv",
		"b.csv": "payments_bad_rows.csv",
		"c.csv": "no_header.csv",
	})
	output := filepath.Join(dir, "merged_output.csv")

	out, err := runChallan(t, nil, "merge", dir, "-o", output)
	require.NoError(t, err, out)
	assert.Contains(t, out, "(8 rows from 2 files)")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Sl No,Vehicle No,Payment Date,Challan Amount,Payment Mode\n")

	// A second merge must not read its own output.
	out, err = runChallan(t, nil, "merge", dir, "-o", output)
	require.NoError(t, err, out)
	assert.Contains(t, out, "(8 rows from 2 files)")
}

func TestLog_ShowsLastRun(t *testing.T) {
	dir := stageExports(t, map[string]string{"payments.csv": "payments_offset3.csv"})
	_, err := runChallan(t, nil, "report", dir, "--daily")
	require.NoError(t, err)

	out, err := runChallan(t, nil, "log", filepath.Join(dir, "Reports"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "file_completed")
	assert.Contains(t, out, "Done processing file: payments.csv")

	out, err = runChallan(t, nil, "log", filepath.Join(dir, "Reports"), "--run", "no-such-run")
	require.NoError(t, err)
	assert.NotContains(t, out, "file_completed")
}

func TestLog_Missing(t *testing.T) {
	out, err := runChallan(t, nil, "log", t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, out, "no processing-log.csv")
}
