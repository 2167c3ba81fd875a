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
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "slidetrans",
	Short: "Formatting-preserving PPTX translator",
	Long: `slidetrans translates PowerPoint decks through a chat LLM while keeping
run-level styling, tables, groups and everything else in the file intact.
After translation a reflow pass widens and refits text boxes so the
translated text still fits the slide.

Use "slidetrans translate --help" for the full pipeline, or
"slidetrans reflow --help" to run the layout pass on its own.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
