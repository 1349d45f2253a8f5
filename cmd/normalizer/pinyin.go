package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palemoky/morning-reading/internal/annotation"
	"github.com/palemoky/morning-reading/internal/classifier"
)

func newPinyinCmd() *cobra.Command {
	var (
		fold   bool
		verify string
		style  string
	)

	cmd := &cobra.Command{
		Use:   "pinyin [text...]",
		Short: "Print the canonical pinyin of each argument, or of each stdin line",
		Example: `  normalizer pinyin 李白 静夜思
  normalizer pinyin --style abbr 守株待兔
  normalizer pinyin --verify "jìng yè sī" 静夜思
  cat authors.txt | normalizer pinyin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := newTransliterator(fold)
			if err != nil {
				return err
			}
			convert, err := pinyinStyle(tr, style)
			if err != nil {
				return err
			}

			if verify != "" {
				if len(args) != 1 {
					return fmt.Errorf("--verify takes exactly one text argument")
				}
				return verifyAnnotation(cmd, tr, args[0], verify)
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, text := range args {
					fmt.Fprintln(out, convert(text))
				}
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				fmt.Fprintln(out, convert(scanner.Text()))
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&fold, "fold", false, "Fold traditional characters to simplified before lookup")
	cmd.Flags().StringVarP(&style, "style", "s", "tone", "Output style: tone, plain or abbr")
	cmd.Flags().StringVar(&verify, "verify", "", "Classify this annotation against the text and print the repair")
	return cmd
}

func pinyinStyle(tr *classifier.Transliterator, style string) (func(string) string, error) {
	switch style {
	case "tone", "":
		return tr.Transliterate, nil
	case "plain":
		return classifier.ToPinyinNoTone, nil
	case "abbr":
		return classifier.ToPinyinAbbr, nil
	}
	return nil, fmt.Errorf("unknown pinyin style %q (want tone, plain or abbr)", style)
}

func verifyAnnotation(cmd *cobra.Command, tr *classifier.Transliterator, text, have string) error {
	repairer := annotation.NewRepairer(annotation.NewValidator(tr, annotation.DefaultThresholds()))
	res := repairer.Fix(text, have)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kind:      %s\n", res.Kind)
	fmt.Fprintf(out, "canonical: %s\n", tr.Transliterate(text))
	if res.Changed() {
		fmt.Fprintf(out, "repaired:  %s\n", res.After)
	}
	if res.Kind == annotation.ToneVariant && !classifier.ContainsToneMark(have) {
		fmt.Fprintln(out, "note:      annotation carries no tone marks")
	}
	if res.Final == annotation.Unresolvable {
		fmt.Fprintln(out, "status:    needs manual review")
	}
	return nil
}
