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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/believeitmyway/SlideTrans/internal/layout"
	"github.com/believeitmyway/SlideTrans/internal/pptx"
)

var reflowOutput string

var reflowCmd = &cobra.Command{
	Use:   "reflow <input.pptx>",
	Short: "Run the layout pass on an already-translated deck",
	Long: `Widen text boxes into free horizontal space and shrink fonts where the
text still overflows, without translating anything. Useful on a deck saved
with "translate --skip-reflow" or on any deck whose text no longer fits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		if reflowOutput == "" {
			reflowOutput = derivedOutput(inputFile, "_reflowed")
		}
		if inputFile == reflowOutput {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		doc, err := pptx.Open(inputFile)
		if err != nil {
			return err
		}

		layout.AdjustPresentation(doc.Presentation)

		if err := doc.Save(reflowOutput); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", reflowOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reflowCmd)

	reflowCmd.Flags().StringVarP(&reflowOutput, "output", "o", "", "Output file (default <input>_reflowed.pptx)")
}
