package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/ranking"
	"github.com/spigell/job-matcher/internal/recommender"
	"github.com/spigell/job-matcher/internal/vectorspace"
	"github.com/spigell/job-matcher/internal/watcher"
)

const (
	app       = "job-matcher"
	envPrefix = "JOB_MATCHER"
)

type Config struct {
	Corpus *CorpusConfig      `mapstructure:"corpus"`
	Engine recommender.Config `mapstructure:"engine"`
	Skills []string           `mapstructure:"skills"`
	Server *ServerConfig      `mapstructure:"server"`
}

type CorpusConfig struct {
	File      string        `mapstructure:"file"`
	URL       string        `mapstructure:"url"`
	TokenFile string        `mapstructure:"token-file"`
	UserAgent string        `mapstructure:"user-agent"`
	Watch     bool          `mapstructure:"watch"`
	Debounce  time.Duration `mapstructure:"debounce"`
}

type ServerConfig struct {
	Listen    string `mapstructure:"listen"`
	TokenFile string `mapstructure:"token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-matcher ranks job postings against a resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("corpus-file", "", "job postings file (.csv, .json, .jsonl)")
	rootCmd.PersistentFlags().String("corpus-url", "", "paginated JSON endpoint serving job postings")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("corpus.file", rootCmd.PersistentFlags().Lookup("corpus-file"))
	viper.BindPFlag("corpus.url", rootCmd.PersistentFlags().Lookup("corpus-url"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	defaults := recommender.DefaultConfig()

	v.SetDefault("corpus.file", "")
	v.SetDefault("corpus.url", "")
	v.SetDefault("corpus.token-file", "")
	v.SetDefault("corpus.user-agent", "")
	v.SetDefault("corpus.watch", false)
	v.SetDefault("corpus.debounce", watcher.DefaultDebounce)

	v.SetDefault("engine.max-features", vectorspace.DefaultMaxFeatures)
	v.SetDefault("engine.boost-factor", ranking.DefaultBoostFactor)
	v.SetDefault("engine.priority-roles", defaults.PriorityRoles)
	v.SetDefault("engine.top-n", recommender.DefaultTopN)
	v.SetDefault("engine.batch-top-n", recommender.DefaultBatchTopN)
	v.SetDefault("engine.workers", 0)

	v.SetDefault("skills", profile.DefaultSkills)

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.token-file", "")
}

func initConfig() {
	// version needs no configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The default config file is optional, an explicit one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Corpus == nil {
		config.Corpus = &CorpusConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
