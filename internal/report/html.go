package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed templates/report.html
var htmlTemplate string

//go:embed templates/styles.css
var cssContent string

//go:embed templates/report.js
var jsContent string

// RenderHTML produces a self-contained page. The report data is inlined as
// JSON and drawn client side.
func RenderHTML(r *Report) (string, error) {
	data, err := json.Marshal(toJSON(r))
	if err != nil {
		return "", fmt.Errorf("failed to marshal report data: %w", err)
	}

	// json.Marshal escapes <, > and &, so the data cannot close the script tag
	content := htmlTemplate
	content = strings.ReplaceAll(content, "{{TITLE}}", "jmuzzle: "+html.EscapeString(r.Module))
	content = strings.ReplaceAll(content, "{{CSS_CONTENT}}", cssContent)
	content = strings.ReplaceAll(content, "{{JS_CONTENT}}", jsContent)
	content = strings.ReplaceAll(content, "{{JSON_DATA}}", string(data))
	return content, nil
}

// GenerateHTML writes the page to outputPath, or a timestamped default,
// and returns the absolute path written
func GenerateHTML(r *Report, outputPath string) (string, error) {
	content, err := RenderHTML(r)
	if err != nil {
		return "", err
	}

	absPath, err := GetOutputPath(outputPath, r.Module)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write HTML file: %w", err)
	}

	return absPath, nil
}

// GetOutputPath returns a safe output path, creating directories if needed
func GetOutputPath(path, module string) (string, error) {
	outputPath := path
	if outputPath == "" {
		outputPath = GetDefaultOutputPath(module)
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath += ".html"
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", outputPath, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return absPath, nil
}

// GetDefaultOutputPath names the report after the module and the time
func GetDefaultOutputPath(module string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, module)

	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("muzzle-%s-%s.html", safe, timestamp)
}
