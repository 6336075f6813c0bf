/*
Copyright © 2025 The termtran Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/termtran/termtran/internal/engine"
	"github.com/termtran/termtran/internal/orchestrator"
	"github.com/termtran/termtran/internal/pipeline"
)

// engineConfig is the per-engine section of the config file.
type engineConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	Model            string        `mapstructure:"model"`
	Credentials      string        `mapstructure:"credentials"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	TranslateTimeout time.Duration `mapstructure:"translate_timeout"`
	Disabled         bool          `mapstructure:"disabled"`
}

func (c engineConfig) timeouts() engine.Timeouts {
	t := engine.DefaultTimeouts
	if c.ConnectTimeout > 0 {
		t.Connect = c.ConnectTimeout
	}
	if c.TranslateTimeout > 0 {
		t.Translate = c.TranslateTimeout
	}
	return t
}

// appConfig is the immutable configuration snapshot read once per process.
type appConfig struct {
	DBPath         string                  `mapstructure:"db"`
	PreferredOrder []string                `mapstructure:"preferred_order"`
	Engines        map[string]engineConfig `mapstructure:"engines"`
}

func loadConfig() (*appConfig, error) {
	cfg := &appConfig{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/termtran.db"
	}
	if len(cfg.PreferredOrder) == 0 {
		cfg.PreferredOrder = []string{"zhipu", "siliconflow", "ollama", "intranet", "google"}
	}
	if cfg.Engines == nil {
		cfg.Engines = make(map[string]engineConfig)
	}

	// Environment fallbacks for API keys.
	if e := cfg.Engines["zhipu"]; e.APIKey == "" {
		e.APIKey = os.Getenv("ZHIPU_API_KEY")
		cfg.Engines["zhipu"] = e
	}
	if e := cfg.Engines["siliconflow"]; e.APIKey == "" {
		e.APIKey = os.Getenv("SILICONFLOW_API_KEY")
		cfg.Engines["siliconflow"] = e
	}
	if e := cfg.Engines["google"]; e.Credentials == "" {
		e.Credentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		cfg.Engines["google"] = e
	}
	return cfg, nil
}

// buildEngines constructs every adapter the configuration enables, plus
// matching descriptors. Cloud engines without credentials are skipped;
// Ollama is always registered since it needs none.
func buildEngines(cfg *appConfig) ([]engine.Adapter, []engine.Descriptor, error) {
	var adapters []engine.Adapter
	var descs []engine.Descriptor

	add := func(a engine.Adapter, ec engineConfig, local bool) {
		adapters = append(adapters, a)
		descs = append(descs, engine.Descriptor{
			ID:       a.ID(),
			Timeouts: ec.timeouts(),
			Model:    ec.Model,
			Local:    local,
		})
	}

	if ec := cfg.Engines["zhipu"]; !ec.Disabled && ec.APIKey != "" {
		add(engine.NewZhipu(ec.APIKey, ec.BaseURL, ec.Model, ec.timeouts()), ec, false)
	}
	if ec := cfg.Engines["siliconflow"]; !ec.Disabled && ec.APIKey != "" {
		add(engine.NewSiliconFlow(ec.APIKey, ec.BaseURL, ec.Model, ec.timeouts()), ec, false)
	}
	if ec := cfg.Engines["ollama"]; !ec.Disabled {
		add(engine.NewOllama(ec.BaseURL, ec.Model, ec.timeouts()), ec, true)
	}
	if ec := cfg.Engines["intranet"]; !ec.Disabled && ec.BaseURL != "" {
		add(engine.NewIntranet(ec.BaseURL, ec.APIKey, ec.Model, ec.timeouts()), ec, true)
	}
	if ec := cfg.Engines["google"]; !ec.Disabled && ec.Credentials != "" {
		add(engine.NewGoogle(ec.Credentials), ec, false)
	}

	if len(adapters) == 0 {
		return nil, nil, fmt.Errorf("no engines configured; set at least one API key or enable ollama")
	}
	return adapters, descs, nil
}

// buildOrchestrator assembles the session orchestrator. settings may be
// nil when persistence is disabled.
func buildOrchestrator(cfg *appConfig, settings orchestrator.SettingsStore) (*orchestrator.Orchestrator, error) {
	adapters, descs, err := buildEngines(cfg)
	if err != nil {
		return nil, err
	}
	session := orchestrator.Session{PreferredOrder: cfg.PreferredOrder}
	return orchestrator.New(adapters, descs, session, settings), nil
}

// parseGlossaryFile reads tab-separated "source<TAB>target" lines. Blank
// lines and lines starting with # are skipped.
func parseGlossaryFile(path string) ([]pipeline.GlossaryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open glossary file: %w", err)
	}
	defer f.Close()

	var entries []pipeline.GlossaryEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("glossary line %d: expected source<TAB>target", lineNo)
		}
		entries = append(entries, pipeline.GlossaryEntry{
			Source: strings.TrimSpace(parts[0]),
			Target: strings.TrimSpace(parts[1]),
		})
	}
	return entries, scanner.Err()
}
