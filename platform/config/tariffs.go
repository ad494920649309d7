package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TariffEnvPrefix prefixes environment overrides for keys in the tariff file, e.g.
// TARIFF_VAT_RATE overrides vat_rate and TARIFF_SMALL_REDUCTION overrides small.reduction.
const TariffEnvPrefix = "TARIFF"

// LoadTariffFile decodes the YAML tariff file at path onto target. Target should already hold
// the built-in defaults; keys missing from the file keep them. An empty path is a no-op.
func LoadTariffFile(path string, target any) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(TariffEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read tariff file: %w", err)
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("unable to unmarshal tariff file: %w", err)
	}
	return nil
}
