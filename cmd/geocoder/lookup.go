package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/geocoder/internal/config"
	"github.com/couchcryptid/geocoder/internal/domain"
	"github.com/couchcryptid/geocoder/internal/geocoder"
	"github.com/couchcryptid/geocoder/internal/observability"
)

type lookupResult struct {
	Provider string           `json:"provider"`
	Results  []domain.Address `json:"results"`
}

// openRegistry builds a registry for a one-shot command. Metrics go to a
// private registry since nothing scrapes them.
func openRegistry(cmd *cobra.Command, v *viper.Viper) (*geocoder.Registry, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	return buildRegistry(cfg, metrics, logger)
}

func selectProvider(reg *geocoder.Registry, name string) (domain.Provider, error) {
	if name == "" {
		return reg.Default()
	}
	return reg.Using(name)
}

func newGeocodeCmd(v *viper.Viper) *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "geocode <address or IP>",
		Short: "resolve an address or IP address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := openRegistry(cmd, v)
			if err != nil {
				return err
			}
			defer reg.Close()

			p, err := selectProvider(reg, providerName)
			if err != nil {
				return err
			}
			results, err := p.Geocode(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lookupResult{Provider: p.Name(), Results: results})
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to use instead of the default")
	return cmd
}

func newReverseCmd(v *viper.Viper) *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "reverse <lat> <lon>",
		Short: "resolve coordinates to an address",
		Long: `
reverse resolves WGS-84 coordinates to an address. Put negative values after
"--", e.g. geocoder reverse -- -33.8688 151.2093.
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := parseCoordinate(args[0], 90)
			if err != nil {
				return fmt.Errorf("latitude: %w", err)
			}
			lon, err := parseCoordinate(args[1], 180)
			if err != nil {
				return fmt.Errorf("longitude: %w", err)
			}

			reg, err := openRegistry(cmd, v)
			if err != nil {
				return err
			}
			defer reg.Close()

			p, err := selectProvider(reg, providerName)
			if err != nil {
				return err
			}
			results, err := p.Reverse(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), lookupResult{Provider: p.Name(), Results: results})
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to use instead of the default")
	return cmd
}

func parseCoordinate(s string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f < -limit || f > limit {
		return 0, fmt.Errorf("%v is outside [-%v, %v]", f, limit, limit)
	}
	return f, nil
}

func newProvidersCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "list the enabled providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := openRegistry(cmd, v)
			if err != nil {
				return err
			}
			defer reg.Close()

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"default":   reg.DefaultName(),
				"providers": reg.Names(),
			})
		},
	}
}
