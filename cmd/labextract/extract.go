package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/internal/store"
	"github.com/labextract-server/internal/textract"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract entities from a report file or standard input",
		Long: `Extract reads a report (plain text, or PDF when a text extraction service is
configured), classifies it and prints the extracted biomarkers and variants with their
canonical names and confidence scores. With --user the entities are also saved to the
local store.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExtract,
	}
	cmd.Flags().String("type", "", "document type hint: biomarker or genetic")
	cmd.Flags().Float64("min-confidence", -1, "entity confidence floor, 0-100 (default from configuration)")
	cmd.Flags().String("format", "table", "output format: json or table")
	cmd.Flags().String("user", "", "save the extracted entities for this user")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "table" {
		return fmt.Errorf("unknown format %q (want json or table)", format)
	}
	typeFlag, _ := cmd.Flags().GetString("type")
	hint, err := domain.ParseDocumentType(typeFlag)
	if err != nil {
		return err
	}

	cfg := cliConfig(cmd)
	if mc, _ := cmd.Flags().GetFloat64("min-confidence"); mc >= 0 {
		if mc > 100 {
			return fmt.Errorf("min-confidence must be between 0 and 100")
		}
		cfg.MinConfidence = mc
	}
	logger := newLogger(cfg)

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd, args)
	if err != nil {
		return err
	}

	svcCfg := cfg.ServiceConfig()
	var remote textract.Extractor
	if te := cfg.TextExtractionConfig(); te.BaseURL != "" {
		remote = textract.NewClient(te, logger)
	}
	opts := []service.Option{service.WithLogger(logger), service.WithTextExtractor(textract.NewChain(remote))}

	user, _ := cmd.Flags().GetString("user")
	if user != "" {
		if err := cfg.EnsureDataDir(); err != nil {
			return err
		}
		entities, err := store.NewSQLiteStore(cfg.StoreDBPath())
		if err != nil {
			return err
		}
		defer entities.Close()
		opts = append(opts, service.WithStore(entities))
	} else {
		svcCfg.Persist = false
	}

	reports := service.NewReportService(engine, svcCfg, opts...)
	resp, err := reports.ExtractDocument(cmd.Context(), doc, service.ExtractRequest{
		TypeHint: hint,
		UserID:   user,
		Source:   domain.SourceCLI,
	})
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return printTable(cmd.OutOrStdout(), resp)
}

func readDocument(cmd *cobra.Command, args []string) (textract.Document, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return textract.Document{}, fmt.Errorf("failed to read standard input: %w", err)
		}
		return textract.Document{Filename: "stdin", ContentType: "text/plain", Data: data}, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return textract.Document{}, fmt.Errorf("failed to read report: %w", err)
	}
	return textract.Document{Filename: filepath.Base(args[0]), Data: data}, nil
}

func printTable(out io.Writer, resp *service.ExtractResponse) error {
	review := "no"
	if resp.NeedsReview {
		review = "yes"
	}
	fmt.Fprintf(out, "Document type: %s\nConfidence:    %.1f\nNeeds review:  %s\n", resp.DocumentType, resp.Confidence, review)
	if resp.Truncated {
		fmt.Fprintf(out, "Input truncated from %d characters\n", resp.InputChars)
	}
	if resp.Saved != nil {
		fmt.Fprintf(out, "Saved:         %d biomarkers, %d variants\n", resp.Saved.Biomarkers, resp.Saved.Variants)
	}

	if len(resp.Biomarkers) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BIOMARKER\tVALUE\tUNIT\tSTATUS\tCANONICAL\tCONFIDENCE\tSTRATEGY")
		for _, b := range resp.Biomarkers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\t%s\n",
				b.Name, b.Comparator+strconv.FormatFloat(b.Value, 'f', -1, 64), dash(b.Unit),
				dash(string(b.Status)), dash(b.CanonicalKey), b.Confidence, b.Strategy)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(resp.Variants) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VARIANT\tGENE\tGENOTYPE\tZYGOSITY\tCANONICAL\tCONFIDENCE\tSTRATEGY")
		for _, v := range resp.Variants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\t%s\n",
				v.RawName, dash(v.Gene), dash(v.Genotype), dash(string(v.Zygosity)),
				dash(v.CanonicalKey), v.Confidence, v.Strategy)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if resp.EntityCount() == 0 {
		fmt.Fprintln(out, "\nNo entities found.")
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
