/*
Copyright © 2026 The SlideTrans Authors

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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/believeitmyway/SlideTrans/internal/config"
	"github.com/believeitmyway/SlideTrans/internal/detector"
	"github.com/believeitmyway/SlideTrans/internal/gateway"
	"github.com/believeitmyway/SlideTrans/internal/layout"
	"github.com/believeitmyway/SlideTrans/internal/orchestrator"
	"github.com/believeitmyway/SlideTrans/internal/pptx"
)

var (
	configPath string
	outputFile string
	useMock    bool
	debugLog   string
	skipReflow bool
)

var translateCmd = &cobra.Command{
	Use:   "translate <input.pptx>",
	Short: "Translate a deck and reflow its layout",
	Long: `Translate every paragraph of a .pptx deck through the configured
chat-completions backend, preserving run styling, then widen and refit text
boxes so the translation fits.

The deck is saved once right after translation and again after the reflow
pass, so an interrupted reflow still leaves a fully translated file on disk.
Use --skip-reflow to keep only the raw translated artifact.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		if outputFile == "" {
			outputFile = derivedOutput(inputFile, "_translated")
		}
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		glossary, err := config.LoadGlossary(cfg.GlossaryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Glossary unavailable: %v\n", err)
		}

		doc, err := pptx.Open(inputFile)
		if err != nil {
			return err
		}

		if detected, match, ok := detector.New().VerifySource(doc.Presentation, cfg.SourceLanguage); ok && !match {
			fmt.Fprintf(os.Stderr, "Warning: deck text looks like %s, config expects %s\n",
				detected, cfg.SourceLanguage)
		}

		var backend gateway.Backend
		if useMock {
			backend = gateway.MockBackend{}
		} else {
			backend = gateway.NewOpenAIBackend(cfg.Backend)
		}
		if debugLog != "" {
			backend = gateway.NewDebugBackend(backend, debugLog)
		}

		orch := orchestrator.New(gateway.New(backend, cfg, glossary), cfg)

		ctx := context.Background()
		progress := func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rTranslating slides: %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
		stats, err := orch.TranslateDocument(ctx, doc.Presentation, progress)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Paragraphs: %d translated, %d skipped (of %d)\n",
			stats.Translated, stats.Skipped, stats.Tasks)
		if stats.FailedBatches > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d of %d batches failed; their paragraphs keep the source text\n",
				stats.FailedBatches, stats.Batches)
		}

		// Checkpoint the raw translation before touching geometry.
		if err := doc.Save(outputFile); err != nil {
			return err
		}
		if skipReflow {
			fmt.Printf("Wrote %s (reflow skipped)\n", outputFile)
			return nil
		}

		layout.AdjustPresentation(doc.Presentation)
		if err := doc.Save(outputFile); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", outputFile)
		return nil
	},
}

// derivedOutput builds the default output path next to the input file.
func derivedOutput(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to YAML config file")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default <input>_translated.pptx)")
	translateCmd.Flags().BoolVar(&useMock, "mock", false, "Use the offline mock backend instead of the API")
	translateCmd.Flags().StringVar(&debugLog, "debug-llm", "", "Append every backend request/response to this JSON-lines file")
	translateCmd.Flags().BoolVar(&skipReflow, "skip-reflow", false, "Save the raw translation without the layout pass")
}
