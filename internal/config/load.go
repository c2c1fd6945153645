package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and from
// MNEMO_-prefixed environment variables, environment winning. An empty
// configFile falls back to mnemo.yaml in the working directory or
// $HOME/.config/mnemo. A missing file is fine; the defaults apply.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mnemo")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mnemo")
	}

	setDefaults(v)

	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return nil, fmt.Errorf("invalid config: field %s failed rule %q", first.Namespace(), first.Tag())
		}
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetDefault("storage.collection_path", def.Storage.CollectionPath)
	v.SetDefault("storage.media_dir", def.Storage.MediaDir)

	v.SetDefault("scheduler.learn_steps", def.Scheduler.LearnSteps)
	v.SetDefault("scheduler.relearn_steps", def.Scheduler.RelearnSteps)
	v.SetDefault("scheduler.graduating_interval", def.Scheduler.GraduatingInterval)
	v.SetDefault("scheduler.easy_interval", def.Scheduler.EasyInterval)
	v.SetDefault("scheduler.again_ease_delta", def.Scheduler.AgainEaseDelta)
	v.SetDefault("scheduler.hard_ease_delta", def.Scheduler.HardEaseDelta)
	v.SetDefault("scheduler.easy_ease_delta", def.Scheduler.EasyEaseDelta)
	v.SetDefault("scheduler.min_ease", def.Scheduler.MinEase)
	v.SetDefault("scheduler.hard_multiplier", def.Scheduler.HardMultiplier)
	v.SetDefault("scheduler.easy_bonus", def.Scheduler.EasyBonus)
	v.SetDefault("scheduler.interval_multiplier", def.Scheduler.IntervalMultiplier)
	v.SetDefault("scheduler.lapse_multiplier", def.Scheduler.LapseMultiplier)
	v.SetDefault("scheduler.lapse_min_interval", def.Scheduler.LapseMinInterval)
	v.SetDefault("scheduler.leech_threshold", def.Scheduler.LeechThreshold)
	v.SetDefault("scheduler.fuzz_percent", def.Scheduler.FuzzPercent)
	v.SetDefault("scheduler.max_interval", def.Scheduler.MaxInterval)

	v.SetDefault("importer.batch_size", def.Importer.BatchSize)

	v.SetDefault("search.default_limit", def.Search.DefaultLimit)
}
