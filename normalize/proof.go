package normalize

import (
	"sort"
	"strings"

	"github.com/totemtrack/go-track-sheets/models"
)

// proofColumns are the known spellings of the proof-of-delivery column, in
// priority order: exact name, trailing-space variant, ASCII-folded variant.
var proofColumns = []string{"NÃO EXCLUIR", "NÃO EXCLUIR ", "NAO EXCLUIR"}

// proofOfDelivery extracts the proof-of-delivery link from a document-sheet
// row. The known column spellings are tried first; failing those, any column
// whose name starts with "NÃO"/"NAO" is accepted. Returns "" when no column
// holds a link.
func proofOfDelivery(row models.RawRow) string {
	for _, name := range proofColumns {
		if link := proofLink(row[name]); link != "" {
			return link
		}
	}

	// Fallback scan over the whole key set, sorted so the pick is stable
	// across refreshes.
	names := make([]string, 0, len(row))
	for name := range row {
		if strings.HasPrefix(name, "NÃO") || strings.HasPrefix(name, "NAO") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if link := proofLink(row[name]); link != "" {
			return link
		}
	}
	return ""
}

// proofLink validates the cell as a link and rewrites Drive's /view? path
// to /preview? so the result can be embedded directly.
func proofLink(value string) string {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "http") {
		return ""
	}
	return strings.Replace(v, "/view?", "/preview?", 1)
}
