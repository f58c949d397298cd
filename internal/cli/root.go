package cli

import (
	"fmt"
	"os"

	"github.com/citewatch/citewatch/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "citewatch",
	Short: "Citewatch - citation verification and claim-to-source integrity",
	Long: `Citewatch keeps generated documents honest about their evidence.

It verifies citations against bibliographic databases (Crossref and
OpenAlex), links factual claims in generated text back to the retrieval
sources that support them, keeps those links anchored across document
edits, and builds a prioritized review queue of content that needs a
human look.

Citewatch scores support, it does not judge truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Citewatch.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("citewatch v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.citewatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.citewatch")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CITEWATCH_*
	viper.SetEnvPrefix("CITEWATCH")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds runtime configuration: defaults, then config file
// and environment overrides, then shared flags.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("http.user_agent"); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := viper.GetString("http.mailto"); v != "" {
		cfg.HTTP.Mailto = v
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.doi_ttl"); v > 0 {
		cfg.Cache.DOITTL = v
	}
	if v := viper.GetDuration("cache.search_ttl"); v > 0 {
		cfg.Cache.SearchTTL = v
	}
	if v := viper.GetFloat64("providers.crossref.requests_per_second"); v > 0 {
		cfg.Providers.Crossref.RequestsPerSecond = v
	}
	if v := viper.GetFloat64("providers.openalex.requests_per_second"); v > 0 {
		cfg.Providers.OpenAlex.RequestsPerSecond = v
	}
	if v := viper.GetFloat64("review.confidence_threshold"); v > 0 {
		cfg.Review.ConfidenceThreshold = v
	}
	if viper.IsSet("review.include_partial_citations") {
		cfg.Review.IncludePartialCitations = viper.GetBool("review.include_partial_citations")
	}
	if v := viper.GetInt("review.max_items"); v > 0 {
		cfg.Review.MaxItems = v
	}
	if viper.IsSet("linkcheck.enabled") {
		cfg.LinkCheck.Enabled = viper.GetBool("linkcheck.enabled")
	}
	if viper.IsSet("llm.enabled") {
		cfg.LLM.Enabled = viper.GetBool("llm.enabled")
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if cfg.LLM.Enabled && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg.Output.Verbose = verbose
	return cfg
}
