package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/couchcryptid/geocoder/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.New()
	var envFile string

	root := &cobra.Command{
		Use:     "geocoder",
		Short:   "geocode addresses, coordinates and IP addresses",
		Version: version,
		Long: `
geocoder resolves free-form addresses and IP addresses to normalized address
records, and coordinates back to addresses, using the providers enabled in the
environment (BAIDU_API_KEY, IPGEOBASE_ENABLED, MAPBOX_TOKEN, IP2LOCATION_DB_PATH).
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "json", "log format: json or text")
	bindFlags(v, flags.Lookup, map[string]string{
		"log_level":  "log-level",
		"log_format": "log-format",
	})

	root.AddCommand(
		newServeCmd(v),
		newGeocodeCmd(v),
		newReverseCmd(v),
		newProvidersCmd(v),
	)
	return root
}

// loadEnvFile loads path into the environment. A missing file is only an
// error when the path was given explicitly.
func loadEnvFile(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// bindFlags makes each named flag override its config key when set.
func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
