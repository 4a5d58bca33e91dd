package report

import (
	"fmt"
	"strings"
)

const filenamePrefix = "Stundenauflistung"

// Filename derives the deterministic report base name (no extension) from
// the selection. Month segments come from the distinct months actually
// present in the rows, so a gap month never appears. Selecting all projects
// omits the project segment; the SmallProjectsClient omits the client
// segment and always keeps the projects.
func Filename(sel Selection) string {
	segments := []string{filenamePrefix}

	smallProjects := normalize(sel.ClientName) == SmallProjectsClient
	if !smallProjects {
		segments = append(segments, sanitize(sel.ClientName))
	}
	if !sel.AllProjects || smallProjects {
		for _, project := range sel.Projects {
			segments = append(segments, sanitize(project))
		}
	}
	segments = append(segments, monthSegments(sel.Rows)...)
	return strings.Join(segments, "_")
}

func monthSegments(rows []TimeEntry) []string {
	months := distinctMonths(rows)
	if len(months) == 0 {
		return nil
	}
	first, last := months[0], months[len(months)-1]
	if first.year != last.year {
		return []string{fmt.Sprintf("%02d_%d--%02d_%d", first.month, first.year, last.month, last.year)}
	}
	segments := make([]string, 0, len(months)+1)
	for _, ym := range months {
		segments = append(segments, fmt.Sprintf("%02d", ym.month))
	}
	return append(segments, fmt.Sprintf("%d", first.year))
}

func sanitize(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_")
	return replacer.Replace(strings.TrimSpace(name))
}
