// Package export writes the task collection as JSON, CSV or a PDF report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/five82/tally/internal/task"
)

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	PDF  Format = "pdf"
)

// ParseFormat accepts json, csv or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, CSV, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json, csv or pdf)", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, format Format, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch format {
	case JSON:
		return writeJSON(w, tasks)
	case CSV:
		return writeCSV(w, tasks)
	case PDF:
		return writePDF(w, tasks)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, tasks []task.Task) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "description", "completed"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, t := range tasks {
		err := cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			strconv.FormatBool(t.Completed),
		})
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func writePDF(w io.Writer, tasks []task.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Tally tasks", true)
	pdf.AddPage()

	open, done := task.Counts(tasks)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tally tasks")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d tasks, %d open, %d done", len(tasks), open, done))
	pdf.Ln(10)

	if len(tasks) == 0 {
		pdf.Cell(40, 6, "All tasks completed!")
	}
	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(12, 6, mark, "", 0, "L", false, 0, "")
		pdf.CellFormat(14, 6, "#"+strconv.FormatInt(t.ID, 10), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(t.Title), "", "L", false)
		if t.Description != "" {
			pdf.SetX(pdf.GetX() + 26)
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr(t.Description), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
