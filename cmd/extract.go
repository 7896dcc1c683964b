package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/pickup-extractor/api/model"
	"github.com/fyerfyer/pickup-extractor/internal/document"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/fyerfyer/pickup-extractor/internal/report"
	"github.com/spf13/cobra"
)

var (
	extractFile   string
	extractFormat string
	extractOut    string
	extractScript string
	extractTalent string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract pickups from a request file",
	Long: `Run the extraction pipeline over a single request body, the same JSON
document accepted by POST /process:

  {"documentName": "...", "plainText": "...", "formattedText": [...], "talentName": "..."}

With --document the input is a Markdown or plain text script instead:
**bold**, <u>underline</u> and <mark>highlight</mark> become formatted segments.

The result is printed as JSON by default, or rendered as a pickup sheet.

Examples:
  pickupd extract --file request.json
  cat request.json | pickupd extract
  pickupd extract -f request.json --format pdf --out pickups.pdf
  pickupd extract --document ep01.md --talent Robin --format markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON := strings.EqualFold(extractFormat, "json")
		var format report.Format
		if !asJSON {
			var err error
			if format, err = report.ParseFormat(extractFormat); err != nil {
				return err
			}
		}

		doc, err := readDocument(cmd)
		if err != nil {
			return err
		}

		a, err := setupApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.Extract(cmd.Context(), doc)
		if err != nil {
			return err
		}

		out, closeOut, err := openOutput(cmd, extractOut)
		if err != nil {
			return err
		}
		defer closeOut()

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(model.NewProcessResponse(result))
		}
		return a.renderer.Render(out, result, format)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "-", "request JSON file, - for stdin")
	extractCmd.Flags().StringVar(&extractFormat, "format", "json", "output format: json, markdown, html or pdf")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "-", "output file, - for stdout")
	extractCmd.Flags().StringVar(&extractScript, "document", "", "Markdown or plain text script to import, overrides --file")
	extractCmd.Flags().StringVar(&extractTalent, "talent", "", "talent name, used with --document")
}

// readDocument 读取请求JSON，或者导入脚本文件
func readDocument(cmd *cobra.Command) (pickup.Document, error) {
	if extractScript != "" {
		parser, err := document.ParserFactory(extractScript)
		if err != nil {
			return pickup.Document{}, err
		}
		f, err := os.Open(extractScript)
		if err != nil {
			return pickup.Document{}, err
		}
		defer f.Close()

		doc, err := parser.ParseReader(f, filepath.Base(extractScript))
		if err != nil {
			return pickup.Document{}, err
		}
		doc.TalentName = extractTalent
		return doc, nil
	}

	in, closeIn, err := openInput(cmd, extractFile)
	if err != nil {
		return pickup.Document{}, err
	}
	defer closeIn()

	var req model.ProcessRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return pickup.Document{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return req.ToDocument(), nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
