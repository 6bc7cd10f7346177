package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/labextract-server/pkg/vocabulary"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Map a free-text name to its canonical vocabulary entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			kind, err := vocabulary.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			cfg := cliConfig(cmd)
			engine, err := newEngine(cfg, newLogger(cfg))
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			m := engine.Vocabulary().Resolve(kind, name)
			if !m.Matched() {
				return fmt.Errorf("no %s matches %q", kind, name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Key, m.Name, m.Method)
			return nil
		},
	}
	cmd.Flags().String("kind", "biomarker", "vocabulary to search: biomarker or variant")
	return cmd
}

func newVocabularyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocabulary",
		Short: "List the canonical vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			kind, err := vocabulary.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			cfg := cliConfig(cmd)
			engine, err := newEngine(cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			vocab := engine.Vocabulary()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if kind == vocabulary.KindVariant {
				fmt.Fprintln(w, "KEY\tIDENTIFIER\tGENE\tNAME")
				for _, e := range vocab.Variants() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, dash(e.Identifier), dash(e.Gene), e.Name)
				}
			} else {
				fmt.Fprintln(w, "KEY\tNAME\tCATEGORY\tUNIT")
				for _, e := range vocab.Biomarkers() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, e.Name, e.Category, dash(e.Unit))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("kind", "biomarker", "vocabulary to list: biomarker or variant")
	return cmd
}
