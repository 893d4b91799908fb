package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
)

// writeWithFile writes to outputFile, or to stdout when outputFile is empty.
func writeWithFile(outputFile string, stdout io.Writer, writer func(io.Writer) error, successMsg string) error {
	if outputFile == "" {
		return writer(stdout)
	}

	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	contract.LogInfo(fmt.Sprintf("%s to %s", successMsg, outputFile))
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes a header and then the rows produced by writeRows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the formatter closures shared by all output types.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtPercent func(float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtPercent = func(v float64) string {
		return fmtFloat(v) + "%"
	}
	return fmtFloat, fmtPercent
}
