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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/termtran/termtran/internal/pipeline"
	"github.com/termtran/termtran/internal/store"
)

var (
	translateText     string
	translateInput    string
	translateOutput   string
	translateSource   string
	translateTarget   string
	translateEngine   string
	translateStyle    string
	translateGlossary string
	translateNoCache  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text with terminology enforcement",
	Long: `Translate text between languages while enforcing the glossary.

The text comes from --text or --input. Glossary terms come from the
persistent glossary for the language pair, merged with an optional
--glossary TSV file (file entries win on conflict).

Multi-clause enumerations (numbered items, semicolon-joined clauses) are
detected and translated clause by clause; a failing clause keeps its
original text and raises a quality flag instead of failing the call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := translateText
		if text == "" && translateInput != "" {
			data, err := os.ReadFile(translateInput)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to translate: pass --text or --input")
		}

		sourceLang, err := pipeline.ParseLang(translateSource)
		if err != nil {
			return err
		}
		targetLang, err := pipeline.ParseLang(translateTarget)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if !translateNoCache {
			if cached, found, cacheErr := db.GetCachedTranslation(ctx, text, string(sourceLang), string(targetLang)); cacheErr == nil && found {
				fmt.Fprintln(os.Stderr, "Using cached translation")
				return emitTranslation(cached)
			}
		}

		glossary, err := assembleGlossary(ctx, db, sourceLang, targetLang)
		if err != nil {
			return err
		}

		orch, err := buildOrchestrator(cfg, db)
		if err != nil {
			return err
		}

		result, err := orch.Translate(ctx, pipeline.TranslationRequest{
			Text:        text,
			SourceLang:  sourceLang,
			TargetLang:  targetLang,
			Terminology: glossary,
			StyleHint:   translateStyle,
			Engine:      translateEngine,
		})
		if err != nil {
			return err
		}

		if len(result.QualityFlags) > 0 {
			flags := make([]string, len(result.QualityFlags))
			for i, f := range result.QualityFlags {
				flags[i] = string(f)
			}
			fmt.Fprintf(os.Stderr, "Quality flags: %s\n", strings.Join(flags, ", "))
		}
		fmt.Fprintf(os.Stderr, "Engine: %s\n", result.EngineUsed)

		if !translateNoCache {
			flags := make([]string, len(result.QualityFlags))
			for i, f := range result.QualityFlags {
				flags[i] = string(f)
			}
			_ = db.SaveToMemory(ctx, text, string(sourceLang), string(targetLang), result.Text, result.EngineUsed, flags)
		}

		return emitTranslation(result.Text)
	},
}

// assembleGlossary merges the stored glossary for the language pair with
// the --glossary file; file entries win on conflicting source terms.
func assembleGlossary(ctx context.Context, db *store.Store, sourceLang, targetLang pipeline.Lang) ([]pipeline.GlossaryEntry, error) {
	stored, err := db.GetGlossaryTerms(ctx, string(sourceLang), string(targetLang))
	if err != nil {
		return nil, fmt.Errorf("failed to load glossary: %w", err)
	}

	var fromFile []pipeline.GlossaryEntry
	if translateGlossary != "" {
		fromFile, err = parseGlossaryFile(translateGlossary)
		if err != nil {
			return nil, err
		}
	}

	merged := make(map[string]string, len(stored)+len(fromFile))
	for src, tgt := range stored {
		merged[src] = tgt
	}
	for _, e := range fromFile {
		merged[e.Source] = e.Target
	}

	entries := make([]pipeline.GlossaryEntry, 0, len(merged))
	for src, tgt := range merged {
		entries = append(entries, pipeline.GlossaryEntry{Source: src, Target: tgt})
	}
	return entries, nil
}

func emitTranslation(text string) error {
	if translateOutput == "" {
		fmt.Println(text)
		return nil
	}
	if dir := filepath.Dir(translateOutput); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(translateOutput, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&translateText, "text", "", "Text to translate")
	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Output file (default stdout)")
	translateCmd.Flags().StringVarP(&translateSource, "source", "s", "", "Source language code (required)")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVarP(&translateEngine, "engine", "e", "", "Pin a specific engine")
	translateCmd.Flags().StringVar(&translateStyle, "style", "", "Free-form style guidance for the engine")
	translateCmd.Flags().StringVarP(&translateGlossary, "glossary", "g", "", "Glossary TSV file (source<TAB>target per line)")
	translateCmd.Flags().BoolVar(&translateNoCache, "no-cache", false, "Bypass the translation memory")

	translateCmd.MarkFlagRequired("source")
	translateCmd.MarkFlagRequired("target")
}
