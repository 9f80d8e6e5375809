package docrag

import "strings"

// FormatContext formats retrieved rows as prompt context.
// Each row is headed by its source URL; rows are separated by blank lines.
func FormatContext(rows []*StoredRow) string {
	if len(rows) == 0 {
		return ""
	}

	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, "Source: "+row.Metadata.Source+"\n"+row.Text)
	}

	return strings.Join(parts, "\n\n")
}
