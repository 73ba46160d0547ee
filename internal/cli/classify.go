package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/leasekit/pkg/useragent"
)

func newClassifyCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "classify [user-agent ...]",
		Short: "Print the gatekeeper verdict for user-agent strings",
		Long: "Classifies each argument, or each line of stdin when no arguments are given, " +
			"and prints one tab-separated line: class, matched rule, bot name, user-agent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := useragent.DefaultRules()
			if rulesFile != "" {
				var err error
				if rules, err = useragent.LoadRules(rulesFile); err != nil {
					return err
				}
			}

			classifier, err := useragent.New(rules)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, ua := range args {
					printVerdict(out, ua, classifier.Classify(ua))
				}
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				ua := strings.TrimSpace(scanner.Text())
				if ua == "" {
					continue
				}
				printVerdict(out, ua, classifier.Classify(ua))
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file overriding the built-in lists")

	return cmd
}

func printVerdict(w io.Writer, ua string, v useragent.Verdict) {
	match, name := v.Match, v.BotName
	if match == "" {
		match = "-"
	}
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Class, match, name, ua)
}
