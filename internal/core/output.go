package core

import (
	"os"
	"path/filepath"
	"strings"
)

// ReportExtension is appended to every generated report.
const ReportExtension = ".xlsx"

// OutputName derives the report file name from the requested file name:
// spreadsheet extensions are removed and the result is prefixed "report_".
// Path separators are replaced so the report always lands in the output directory.
func OutputName(fileName string) string {
	base := strings.ReplaceAll(fileName, ".xlsx", "")
	base = strings.ReplaceAll(base, ".xls", "")
	base = strings.NewReplacer("/", "_", `\`, "_").Replace(base)
	return "report_" + base + ReportExtension
}

// WriteArtifact writes data as the report for fileName under dir, creating
// dir when absent. Returns the written path.
func WriteArtifact(dir, fileName string, data []byte) (string, error) {
	const op = "report.write"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", IOError(op, err, "create output directory %s", dir)
	}

	path := filepath.Join(dir, OutputName(fileName))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", IOError(op, err, "write report %s", path)
	}
	return path, nil
}
