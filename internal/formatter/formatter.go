// package formatter provides functions to export result sets to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"encore/internal/recommend"
	"encore/internal/shared"
)

// ExportToCSV converts a ResultSet to CSV format with columns: Position, ID, Title, Artists, Album, URL
func ExportToCSV(results *recommend.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artists", "Album", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range results.Tracks {
		record := []string{
			fmt.Sprintf("%d", i+1),
			track.ID,
			track.Name,
			strings.Join(track.Artists, "; "),
			track.Album,
			track.ExternalURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ResultSet to Markdown format with optional cover image
func ExportToMarkdown(results *recommend.ResultSet, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Recommendations (%s)\n\n", results.Mode))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Request**: %s\n", results.RequestID))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", results.Source))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(results.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range results.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, strings.Join(track.Artists, ", "), track.Name, albumPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ResultSet to plain text format
func ExportToText(results *recommend.ResultSet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Recommendations (%s, %s)\n", results.Mode, results.Source))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(results.Tracks)))

	for i, track := range results.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, strings.Join(track.Artists, ", "), track.Name))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// resultMetadata is the JSON metadata written alongside CSV exports.
type resultMetadata struct {
	RequestID  string `json:"request_id"`
	ListenerID string `json:"listener_id"`
	Mode       string `json:"mode"`
	Source     string `json:"source"`
	Tracks     int    `json:"tracks"`
}

// ToMetadataJSON generates a JSON representation of result set metadata (without tracks)
func ToMetadataJSON(results *recommend.ResultSet) ([]byte, error) {
	return shared.MarshalJSON(resultMetadata{
		RequestID:  results.RequestID,
		ListenerID: results.ListenerID,
		Mode:       string(results.Mode),
		Source:     string(results.Source),
		Tracks:     len(results.Tracks),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a result set to CSV format with accompanying metadata JSON file.
//
// Defaults to the request ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(results *recommend.ResultSet, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = results.RequestID
	}

	csvData, err := ExportToCSV(results)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(results)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a result set to Markdown format in a dedicated directory.
//
// Directory name defaults to the request ID.
// When the first track carries artwork, attempts to download it as the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(results *recommend.ResultSet, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = results.RequestID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL := coverURL(results); imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(results, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// coverURL picks the first artwork URL in the result set.
func coverURL(results *recommend.ResultSet) string {
	for _, track := range results.Tracks {
		if track.ArtworkURL != "" {
			return track.ArtworkURL
		}
	}
	return ""
}

// WriteTextExport exports a result set to plain text format.
//
// Defaults to {requestID}_tracks.txt as the filename.
func WriteTextExport(results *recommend.ResultSet, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", results.RequestID)
	}

	textData, err := ExportToText(results)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
