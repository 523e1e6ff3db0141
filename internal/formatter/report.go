package formatter

import (
	"fmt"
	"strings"

	"datanorm/internal/models"
	"datanorm/internal/normalizer"
	"datanorm/pkg/metadata"
)

// ReportTitle heads every summary report.
const ReportTitle = "# Normalization report"

// RenderReport builds the signed markdown summary of a normalization run.
// The report is signed as validated when nothing was dropped or left unlinked.
func RenderReport(summary *normalizer.Summary, input string) (string, error) {
	if summary == nil {
		return "", normalizer.ErrInvalidDataType
	}

	var sb strings.Builder

	sb.WriteString(ReportTitle + "\n\n")
	sb.WriteString("| Field | Value |\n| --- | --- |\n")
	writeRow(&sb, "Dataset", string(summary.Kind))
	writeRow(&sb, "Input", input)
	writeRow(&sb, "Records", fmt.Sprint(summary.Records))

	if summary.Kind == models.DatasetMusic {
		writeRow(&sb, "Linked instruments", fmt.Sprint(summary.Linked))
	}

	sb.WriteString("\n## Collections\n\n")
	sb.WriteString("| Collection | Count |\n| --- | --- |\n")

	for _, c := range summary.Collections() {
		writeRow(&sb, c.Name, fmt.Sprint(c.Count))
	}

	if len(summary.ConflictingOperations) > 0 {
		sb.WriteString("\n## Conflicting operations\n\n")
		sb.WriteString("Later sightings with different details were ignored.\n\n")

		for _, code := range summary.ConflictingOperations {
			fmt.Fprintf(&sb, "- `%s`\n", code)
		}
	}

	if len(summary.UnmatchedInstruments) > 0 {
		sb.WriteString("\n## Unmatched instruments\n\n")

		for _, name := range summary.UnmatchedInstruments {
			fmt.Fprintf(&sb, "- %s\n", name)
		}
	}

	clean := len(summary.ConflictingOperations) == 0 && len(summary.UnmatchedInstruments) == 0

	return metadata.Sign(AlignTables(sb.String()), clean, nil), nil
}

func writeRow(sb *strings.Builder, cells ...string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeCell(c)
	}

	sb.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
}
