package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Formatter renders a report to bytes.
type Formatter interface {
	Format(report *Report) ([]byte, error)
	Name() string
}

// registration ties a formatter to the file extension used when saving and to
// the alternative names accepted on the command line.
type registration struct {
	formatter Formatter
	ext       string
	aliases   []string
}

var registry = []registration{
	{ConsoleFormatter{}, "txt", []string{"table", "text"}},
	{CSVYearsFormatter{}, "csv", []string{"years-csv", "csv-years"}},
	{CSVCandidatesFormatter{}, "csv", []string{"candidates", "csv-candidates"}},
	{JSONFormatter{}, "json", []string{"json-pretty"}},
	{MonteCarloCSVFormatter{}, "csv", []string{"mc-csv", "csv-montecarlo"}},
}

// lookup finds the registration for a canonical name or alias, ignoring case
// and surrounding space.
func lookup(name string) (registration, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, r := range registry {
		if r.formatter.Name() == n {
			return r, true
		}
		for _, a := range r.aliases {
			if a == n {
				return r, true
			}
		}
	}
	return registration{}, false
}

// NormalizeFormatName resolves an alias to its canonical formatter name.
// Unknown names come back lowercased and trimmed.
func NormalizeFormatName(name string) string {
	if r, ok := lookup(name); ok {
		return r.formatter.Name()
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// GetFormatterByName returns the formatter for a name or alias, or nil.
func GetFormatterByName(name string) Formatter {
	if r, ok := lookup(name); ok {
		return r.formatter
	}
	return nil
}

// AvailableFormatterNames returns the canonical names, sorted.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.formatter.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns every accepted alias, sorted.
func AvailableFormatAliases() []string {
	var aliases []string
	for _, r := range registry {
		aliases = append(aliases, r.aliases...)
	}
	sort.Strings(aliases)
	return aliases
}

// extensionFor is the saved-file extension for a canonical formatter name.
func extensionFor(name string) string {
	if r, ok := lookup(name); ok {
		return r.ext
	}
	return "txt"
}

// WriteFormatted renders the report and writes it to dir as
// iul_report_<timestamp>.<ext>, returning the path.
func WriteFormatted(f Formatter, report *Report, dir, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("iul_report_%s.%s", time.Now().Format("20060102_150405"), ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}
