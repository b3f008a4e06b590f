// internal/adapter/export/export.go

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sovlens/internal/domain/analysis"
	"sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
)

// Format selects the output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatBoth Format = "both"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatBoth:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Report is the exportable view of one completed analysis run.
type Report struct {
	Run      analysis.Run                `json:"run"`
	Position insight.CompetitivePosition `json:"position"`
	Scores   []sov.Score                 `json:"scores"`
	Insights []insight.Insight           `json:"insights"`
}

// Writer writes analysis reports to the local filesystem.
type Writer struct {
	outputDir string
	format    Format
}

// NewWriter creates a report writer rooted at outputDir.
func NewWriter(outputDir string, format Format) *Writer {
	return &Writer{
		outputDir: outputDir,
		format:    format,
	}
}

// Write exports the report and returns the paths of the files written.
func (w *Writer) Write(report Report) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")

	var paths []string
	if w.format == FormatCSV || w.format == FormatBoth {
		scoresPath := filepath.Join(w.outputDir, fmt.Sprintf("sov_scores_%s.csv", stamp))
		if err := writeScoresCSV(scoresPath, report.Scores); err != nil {
			return nil, err
		}
		paths = append(paths, scoresPath)

		if len(report.Insights) > 0 {
			insightsPath := filepath.Join(w.outputDir, fmt.Sprintf("sov_insights_%s.csv", stamp))
			if err := writeInsightsCSV(insightsPath, report.Insights); err != nil {
				return nil, err
			}
			paths = append(paths, insightsPath)
		}
	}

	if w.format == FormatJSON || w.format == FormatBoth {
		jsonPath := filepath.Join(w.outputDir, fmt.Sprintf("sov_report_%s.json", stamp))
		if err := writeReportJSON(jsonPath, report); err != nil {
			return nil, err
		}
		paths = append(paths, jsonPath)
	}

	return paths, nil
}

func writeScoresCSV(path string, scores []sov.Score) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"brand", "platform", "raw_score", "normalized_share",
		"mention_count", "item_count", "positive_mentions",
		"average_rank", "average_sentiment",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range scores {
		record := []string{
			s.Brand,
			string(s.Platform),
			formatFloat(s.RawScore),
			formatFloat(s.NormalizedShare),
			strconv.Itoa(s.MentionCount),
			strconv.Itoa(s.ItemCount),
			strconv.Itoa(s.PositiveMentions),
			formatFloat(s.AverageRank),
			formatFloat(s.AverageSentiment),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing score row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func writeInsightsCSV(path string, insights []insight.Insight) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"priority", "type", "brand", "description", "recommendation", "score"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, ins := range insights {
		record := []string{
			string(ins.Priority),
			ins.Type,
			ins.Brand,
			ins.Description,
			ins.Recommendation,
			formatFloat(ins.Score),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing insight row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func writeReportJSON(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
