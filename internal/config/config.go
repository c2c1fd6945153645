package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Importer  ImporterConfig  `mapstructure:"importer" validate:"required"`
	Search    SearchConfig    `mapstructure:"search" validate:"required"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// StorageConfig locates the collection snapshot and the media folder.
// Both are host-side paths; the engine itself never opens them.
type StorageConfig struct {
	CollectionPath string `mapstructure:"collection_path" validate:"required"`
	MediaDir       string `mapstructure:"media_dir"       validate:"required"`
}

// SchedulerConfig is the single home of every numeric scheduling
// parameter. Defaults (see Default) emulate the classic SM-2 variant of
// the compatible ecosystem; none of them is hardcoded anywhere else.
type SchedulerConfig struct {
	// LearnSteps are the learning-phase step durations in minutes a new
	// card walks through before graduating. Default: 1, 10.
	LearnSteps []int `mapstructure:"learn_steps" validate:"required,min=1,dive,gt=0"`

	// RelearnSteps are the shortened steps after a review lapse.
	// Default: 10.
	RelearnSteps []int `mapstructure:"relearn_steps" validate:"required,min=1,dive,gt=0"`

	// GraduatingInterval is the review interval in days granted when
	// the last learning step is passed with Good. Default: 1.
	GraduatingInterval int `mapstructure:"graduating_interval" validate:"gt=0"`

	// EasyInterval is the larger interval granted when a learning card
	// is answered Easy, bypassing remaining steps. Default: 4.
	EasyInterval int `mapstructure:"easy_interval" validate:"gt=0"`

	// AgainEaseDelta is added to the permille ease on a review lapse.
	// Default: -200.
	AgainEaseDelta int `mapstructure:"again_ease_delta" validate:"lt=0"`

	// HardEaseDelta is added to the ease on a Hard review answer.
	// Default: -150.
	HardEaseDelta int `mapstructure:"hard_ease_delta" validate:"lt=0"`

	// EasyEaseDelta is added to the ease on an Easy review answer.
	// Default: 150.
	EasyEaseDelta int `mapstructure:"easy_ease_delta" validate:"gt=0"`

	// MinEase floors the permille ease factor. Default: 1300.
	MinEase int `mapstructure:"min_ease" validate:"gte=1000"`

	// HardMultiplier dampens interval growth on Hard answers.
	// Default: 1.2.
	HardMultiplier float64 `mapstructure:"hard_multiplier" validate:"gt=1"`

	// EasyBonus is the extra multiplicative bonus on Easy answers.
	// Default: 1.3.
	EasyBonus float64 `mapstructure:"easy_bonus" validate:"gte=1"`

	// IntervalMultiplier scales every computed review interval, a
	// global knob for making the whole scheduler more or less
	// aggressive. Default: 1.0.
	IntervalMultiplier float64 `mapstructure:"interval_multiplier" validate:"gt=0"`

	// LapseMultiplier is the fraction of the prior interval kept after
	// a review lapse. Default: 0.5.
	LapseMultiplier float64 `mapstructure:"lapse_multiplier" validate:"gt=0,lt=1"`

	// LapseMinInterval floors the post-lapse interval in days.
	// Default: 1.
	LapseMinInterval int `mapstructure:"lapse_min_interval" validate:"gt=0"`

	// LeechThreshold is the lapse count at which a card is reported as
	// a leech. Reported only, never auto-suspended. Default: 8.
	LeechThreshold int `mapstructure:"leech_threshold" validate:"gt=0"`

	// FuzzPercent bounds the pseudo-random jitter applied to computed
	// review intervals so cohorts of cards drift apart instead of all
	// falling due the same day. Intervals of two days or less are not
	// fuzzed. Default: 0.05 (±5%).
	FuzzPercent float64 `mapstructure:"fuzz_percent" validate:"gte=0,lte=0.25"`

	// MaxInterval caps the review interval in days. Default: 36500.
	MaxInterval int `mapstructure:"max_interval" validate:"gt=0"`
}

// ImporterConfig tunes the package importer.
type ImporterConfig struct {
	// BatchSize is how many rows the importer processes between
	// progress callbacks. Default: 50.
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
}

// SearchConfig tunes the full-text index.
type SearchConfig struct {
	// DefaultLimit truncates search results when the caller passes no
	// limit. Default: 100.
	DefaultLimit int `mapstructure:"default_limit" validate:"gt=0"`
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			CollectionPath: "collection.json",
			MediaDir:       "media",
		},
		Scheduler: DefaultScheduler(),
		Importer: ImporterConfig{
			BatchSize: 50,
		},
		Search: SearchConfig{
			DefaultLimit: 100,
		},
	}
}

// DefaultScheduler returns the documented scheduling defaults.
func DefaultScheduler() SchedulerConfig {
	return SchedulerConfig{
		LearnSteps:         []int{1, 10},
		RelearnSteps:       []int{10},
		GraduatingInterval: 1,
		EasyInterval:       4,
		AgainEaseDelta:     -200,
		HardEaseDelta:      -150,
		EasyEaseDelta:      150,
		MinEase:            1300,
		HardMultiplier:     1.2,
		EasyBonus:          1.3,
		IntervalMultiplier: 1.0,
		LapseMultiplier:    0.5,
		LapseMinInterval:   1,
		LeechThreshold:     8,
		FuzzPercent:        0.05,
		MaxInterval:        36500,
	}
}
