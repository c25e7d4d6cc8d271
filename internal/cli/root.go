package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/pipeline"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
	logFile  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "macrolens",
	Short: "macrolens - Answer macroeconomic questions from World Bank and IMF data",
	Long: `macrolens turns a natural-language question about countries and economic
indicators into a structured report.

It resolves the countries, indicators and years you ask about, looks up the
series, computes descriptive statistics, trends and comparisons, and writes
a report with a summary, key findings, data tables and a chart description.

Questions may be written in Chinese or English:
  macrolens ask "比较中国和美国过去十年的GDP"
  macrolens ask "Japan inflation since 2015"`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			level = viper.GetString("log.level")
		}
		if level == "" && verbose {
			level = "debug"
		}
		file := logFile
		if file == "" {
			file = viper.GetString("log.file")
		}
		if level == "" {
			level = "warn"
		}
		return logger.InitLogger(level, file)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for macrolens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("macrolens v%s\n", pipeline.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.macrolens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.macrolens")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// MACROLENS_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("MACROLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
