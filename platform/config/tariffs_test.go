package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testSchedule struct {
	VatRate float64 `mapstructure:"vat_rate"`
	Network struct {
		Electricity float64 `mapstructure:"electricity"`
		Gas         float64 `mapstructure:"gas"`
	} `mapstructure:"network"`
}

func TestLoadTariffFile_EmptyPathKeepsDefaults(t *testing.T) {
	target := testSchedule{VatRate: 0.21}
	if err := LoadTariffFile("", &target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.VatRate != 0.21 {
		t.Fatalf("expected default vat rate, got %.2f", target.VatRate)
	}
}

func TestLoadTariffFile_OverridesPresentKeysOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tariffs.yaml")
	content := "network:\n  electricity: 450.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write tariff file: %v", err)
	}

	target := testSchedule{VatRate: 0.21}
	target.Network.Gas = 245
	if err := LoadTariffFile(path, &target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Network.Electricity != 450.5 {
		t.Fatalf("expected electricity fee 450.5, got %.2f", target.Network.Electricity)
	}
	if target.Network.Gas != 245 || target.VatRate != 0.21 {
		t.Fatalf("expected defaults to survive, got gas=%.2f vat=%.2f", target.Network.Gas, target.VatRate)
	}
}

func TestLoadTariffFile_MissingFile(t *testing.T) {
	target := testSchedule{}
	if err := LoadTariffFile(filepath.Join(t.TempDir(), "missing.yaml"), &target); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
