// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "NatureCast")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/")
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("resolver.desiredcount", 8)
	viper.SetDefault("resolver.narrowradiuskm", 50)
	viper.SetDefault("resolver.expandedradiuskm", 200)
	viper.SetDefault("resolver.cachemaxperclass", 200)
	viper.SetDefault("resolver.cooldownhours", 48)

	viper.SetDefault("gbif.endpoint", "https://api.gbif.org/v1/occurrence/search")
	viper.SetDefault("gbif.timeoutseconds", 10)
	viper.SetDefault("gbif.resultlimit", 100)
	viper.SetDefault("gbif.maxretries", 3)
	viper.SetDefault("gbif.failurethreshold", 2)
	viper.SetDefault("gbif.openseconds", 120)
	viper.SetDefault("gbif.debug", false)

	viper.SetDefault("weather.provider", "openmeteo")
	viper.SetDefault("weather.endpoint", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("weather.cacheminutes", 30)
	viper.SetDefault("weather.debug", false)

	viper.SetDefault("narration.provider", "template")
	viper.SetDefault("narration.model", "gemini-2.0-flash")
	viper.SetDefault("narration.apikey", "")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.host", "0.0.0.0")
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)
}
