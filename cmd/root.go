package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/kwscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	 _
	| | ____      _____  ___ ___  _ __   ___
	| |/ /\ \ /\ / / __|/ __/ _ \| '_ \ / _ \
	|   <  \ V  V /\__ \ (_| (_) | |_) |  __/
	|_|\_\  \_/\_/ |___/\___\___/| .__/ \___|
	                             |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kwscope",
	Short: "Keyword suggestions from every search box at once.",
	Long: LOGO + `kwscope asks Google, Bing, Amazon, eBay, YouTube, the app stores and more for
autocomplete suggestions, merges them into one deduplicated list and
estimates how hard the seed keyword is to rank for.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.kwscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-provider timeout (default from dispatch.timeout)")
	viper.BindPFlag("dispatch.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".kwscope")
		viper.SetConfigType("yaml")
	}

	// KWSCOPE_DISPATCH_TIMEOUT=2s overrides dispatch.timeout
	viper.SetEnvPrefix("kwscope")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.kwscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %s", err)
			}
		} else {
			utils.Log.Warnf("Could not read config: %s", err)
		}
	}
}

func setDefaults() {
	viper.SetDefault("dispatch.pool_size", 0)
	viper.SetDefault("dispatch.timeout", "5s")
	viper.SetDefault("dispatch.merge_overhead", "250ms")
	viper.SetDefault("dispatch.retry.attempts", 1)
	viper.SetDefault("dispatch.retry.min_wait", "200ms")
	viper.SetDefault("dispatch.retry.max_wait", "2s")
	viper.SetDefault("dispatch.breaker.threshold", 5)
	viper.SetDefault("dispatch.breaker.cooldown", "60s")

	viper.SetDefault("cache.max_entries", 4096)
	viper.SetDefault("cache.ttl", "30m")
	viper.SetDefault("cache.sweep", "@every 1m")

	viper.SetDefault("providers.priority", []string{})
	viper.SetDefault("providers.allowed", []string{})
	viper.SetDefault("providers.user_agent", "")
	viper.SetDefault("providers.base_urls", map[string]string{})

	viper.SetDefault("locale.marketplaces", "")

	viper.SetDefault("difficulty.serp_url", "")
	viper.SetDefault("difficulty.brands", []string{})

	viper.SetDefault("db.path", "")
	viper.SetDefault("db.retention", "720h")
	viper.SetDefault("db.prune", "@daily")

	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
}
