// Package export renders a task list as json, csv, pdf or plain text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/todo-go/internal/todo"
)

// Formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatText = "text"
)

// Formats lists the supported format names.
var Formats = []string{FormatJSON, FormatCSV, FormatPDF, FormatText}

// Title heads the pdf checklist.
const Title = "To-Do List"

// ParseFormat normalizes a format name. "txt" is accepted for text.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatJSON, FormatCSV, FormatPDF, FormatText:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown export format %q, must be one of: %s", format, strings.Join(Formats, ", "))
}

// Write renders l to w in the named format.
func Write(w io.Writer, l todo.List, format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case FormatCSV:
		return writeCSV(w, l)
	case FormatPDF:
		return writePDF(w, l)
	case FormatText:
		return WriteText(w, l)
	}
	return writeJSON(w, l)
}

// FormatFromPath guesses the format from a file extension, defaulting to json.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV
	case strings.HasSuffix(lower, ".pdf"):
		return FormatPDF
	case strings.HasSuffix(lower, ".txt"):
		return FormatText
	}
	return FormatJSON
}

func writeJSON(w io.Writer, l todo.List) error {
	data, err := todo.EncodeIndent(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, l todo.List) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "text", "completed"}); err != nil {
		return err
	}
	for _, t := range l {
		if err := cw.Write([]string{t.ID, t.Text, strconv.FormatBool(t.Completed)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Checkbox renders the completion marker used by text and pdf output.
func Checkbox(t todo.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}

// Line renders one row of the text listing; n is the 1-based row number.
func Line(n int, t todo.Task) string {
	return fmt.Sprintf("%4d  %s %s", n, Checkbox(t), t.Text)
}

// WriteText writes the numbered listing, one task per line.
func WriteText(w io.Writer, l todo.List) error {
	for i, t := range l {
		if _, err := fmt.Fprintln(w, Line(i+1, t)); err != nil {
			return err
		}
	}
	return nil
}

func writePDF(w io.Writer, l todo.List) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("todo", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, Title)
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	if len(l) == 0 {
		pdf.SetTextColor(128, 128, 128)
		pdf.Cell(40, 8, "No tasks")
	}
	for _, t := range l {
		if t.Completed {
			pdf.SetTextColor(128, 128, 128)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.MultiCell(0, 7, tr(Checkbox(t)+" "+t.Text), "0", "L", false)
	}

	active, completed := l.Counts()
	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(96, 96, 96)
	pdf.Cell(40, 6, fmt.Sprintf("%d open, %d done", active, completed))

	return pdf.Output(w)
}
