package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/semlayer/semgov/pkg/registry"
	"github.com/semlayer/semgov/pkg/server"
	"github.com/semlayer/semgov/pkg/store"
)

func loadConfigFromFile(file string) (*server.Config, error) {
	if file == "" {
		file = "./config.yaml"
	}

	config := &server.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(file) //nolint:gosec // User-provided config file path
	if err != nil {
		// One-shot commands work against the default store without a
		// config file present.
		if os.IsNotExist(err) {
			return config, nil
		}

		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}

// openRegistry builds a store-backed registry for one-shot commands.
// The returned closer stops both services.
func openRegistry(ctx context.Context) (registry.Service, func(), error) {
	config, err := loadConfigFromFile(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewStore(logger, config.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := st.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	reg := registry.NewService(logger, st)
	if err := reg.Start(ctx); err != nil {
		_ = st.Stop()

		return nil, nil, fmt.Errorf("failed to start registry: %w", err)
	}

	closer := func() {
		if err := reg.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop registry")
		}

		if err := st.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}

	return reg, closer, nil
}
