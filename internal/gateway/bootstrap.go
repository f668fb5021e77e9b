package gateway

import (
	"fmt"

	"github.com/nulzo/butler/internal/cli"
	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/llm"
	"go.uber.org/zap"
)

// BootstrapProviders builds an adapter for every provider that has an API key.
// Adapter packages must be imported for their factories to be registered.
func BootstrapProviders(cfg config.ProvidersConfig, log *zap.Logger) map[llm.ProviderName]llm.Provider {
	providers := make(map[llm.ProviderName]llm.Provider)

	for _, name := range llm.Supported {
		pCfg, _ := cfg.Get(string(name))

		if pCfg.APIKey == "" {
			log.Warn(fmt.Sprintf("%s %s %s",
				cli.WarningSign(),
				cli.Stylize(fmt.Sprintf("%s\t", name), cli.Black),
				cli.Stylize("Skipping provider due to missing API key", cli.Yellow),
			))
			continue
		}

		factoryFunc, err := llm.Get(name)
		if err != nil {
			log.Error("No adapter registered", zap.String("provider", string(name)), zap.Error(err))
			continue
		}

		providerInstance, err := factoryFunc(pCfg)
		if err != nil {
			log.Error("Failed to initialize provider",
				zap.String("provider", string(name)),
				zap.Error(err),
			)
			continue
		}

		log.Info(fmt.Sprintf("%s %s %s",
			cli.CheckMark(),
			cli.Stylize(fmt.Sprintf("%s\t", name), cli.Black),
			cli.Stylize("Provider ready", cli.Green),
		))
		providers[name] = providerInstance
	}

	if len(providers) == 0 {
		log.Warn("No providers were configured. Chat requests will be rejected.")
	}

	return providers
}
