package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "out"
	cfg.DateLayouts = []string{"02/01/2006"}

	path := filepath.Join(t.TempDir(), "challan.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "2020-12-01", cfg.Epoch)
	assert.Equal(t, ".csv", cfg.Extension)
	assert.Equal(t, 20, cfg.MaxHeaderOffset)
	assert.Equal(t, "Payment Date", cfg.Columns.PaymentDate)
	assert.Equal(t, "Challan Amount", cfg.Columns.Amount)
	assert.Equal(t, "Reports", cfg.Output.Dir)
	assert.NoError(t, cfg.Validate())

	epoch, err := cfg.EpochDate()
	require.NoError(t, err)
	assert.Equal(t, 2020, epoch.Year())
	assert.Equal(t, 12, int(epoch.Month()))
	assert.Equal(t, 1, epoch.Day())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epoch: 2021-01-01\ncolumns:\n  amount: Fine\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01", cfg.Epoch)
	assert.Equal(t, "Fine", cfg.Columns.Amount)
	assert.Equal(t, "Payment Date", cfg.Columns.PaymentDate)
	assert.Equal(t, 20, cfg.MaxHeaderOffset)
}

func TestResolve_MissingImplicitFileUsesDefaults(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "challan.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default().Epoch, cfg.Epoch)
}

func TestResolve_MissingExplicitFileFails(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "challan.yaml"), true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve_EnvOverrides(t *testing.T) {
	t.Setenv("CHALLAN_EPOCH", "2022-03-01")
	t.Setenv("CHALLAN_LOGGING_LEVEL", "debug")
	t.Setenv("CHALLAN_COLUMNS_AMOUNT", "Amount")

	cfg, err := Resolve("", false)
	require.NoError(t, err)
	assert.Equal(t, "2022-03-01", cfg.Epoch)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "Amount", cfg.Columns.Amount)
	assert.Equal(t, "Payment Date", cfg.Columns.PaymentDate)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Epoch = "01/12/2020"
	cfg.Extension = ""
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Msg, "epoch")
	assert.Contains(t, cerr.Msg, "extension")
	assert.Contains(t, cerr.Msg, "logging format")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "challan.yaml")
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "2020-12-01")
	assert.Contains(t, contents, "max_header_offset: 20")
	assert.Contains(t, contents, "payment_date: Payment Date")
}
