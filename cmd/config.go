package cmd

import (
	"github.com/spf13/viper"

	"github.com/sw33tLie/kwscope/internal/app"
	"github.com/sw33tLie/kwscope/internal/utils"
	"github.com/sw33tLie/kwscope/pkg/dispatch"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// appConfig reads the pipeline configuration from viper.
func appConfig() app.Config {
	var priority []suggest.ProviderID
	for _, id := range viper.GetStringSlice("providers.priority") {
		priority = append(priority, suggest.ProviderID(id))
	}

	return app.Config{
		Dispatch: dispatch.Config{
			PoolSize:      viper.GetInt("dispatch.pool_size"),
			Timeout:       viper.GetDuration("dispatch.timeout"),
			MergeOverhead: viper.GetDuration("dispatch.merge_overhead"),
			Retry: dispatch.RetryPolicy{
				Attempts: viper.GetInt("dispatch.retry.attempts"),
				MinWait:  viper.GetDuration("dispatch.retry.min_wait"),
				MaxWait:  viper.GetDuration("dispatch.retry.max_wait"),
			},
			BreakerThreshold: viper.GetInt("dispatch.breaker.threshold"),
			BreakerCooldown:  viper.GetDuration("dispatch.breaker.cooldown"),
			Priority:         priority,
		},
		CacheMaxEntries:  viper.GetInt("cache.max_entries"),
		CacheTTL:         viper.GetDuration("cache.ttl"),
		Allowed:          viper.GetStringSlice("providers.allowed"),
		BaseURLs:         viper.GetStringMapString("providers.base_urls"),
		UserAgent:        viper.GetString("providers.user_agent"),
		MarketplacesPath: viper.GetString("locale.marketplaces"),
		SERPURL:          viper.GetString("difficulty.serp_url"),
		Brands:           viper.GetStringSlice("difficulty.brands"),
		DBPath:           viper.GetString("db.path"),
	}
}

// newApp builds the pipeline. Commands that never call out to providers
// should open storage directly instead.
func newApp() (*app.App, error) {
	return app.New(appConfig(), utils.Log)
}
