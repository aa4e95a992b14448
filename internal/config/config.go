package config

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers every configuration knob with its default value.
// All values can be overridden via syllaread.yaml or SYLLAREAD_* env vars.
func SetDefaults() {
	viper.SetDefault("playback.speed_ms", 1000) // recognized range 500-2000, not enforced here

	viper.SetDefault("acquire.complete_threshold", 800)
	viper.SetDefault("acquire.merge_threshold", 0.20)
	viper.SetDefault("acquire.daily_ttl", 24*time.Hour)
	viper.SetDefault("acquire.named_ttl", 7*24*time.Hour)
	viper.SetDefault("acquire.timeout", 15*time.Second)
	viper.SetDefault("acquire.retries", 3)
	viper.SetDefault("acquire.backoff_base", time.Second)

	viper.SetDefault("source.base_url", "https://en.wikipedia.org")

	viper.SetDefault("segment.patterns", "")

	viper.SetDefault("cache.dir", "")
}
