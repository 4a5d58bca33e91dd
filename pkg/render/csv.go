package render

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/zeitbericht/zeitbericht/pkg/report"
)

var csvHeader = []string{"description", "task_name", "start", "duration_hours"}

// CSV renders the rows as the intermediate sidecar table. Durations use a
// plain dot separator here; the locale formatting only applies to the
// rendered documents.
func CSV(rows []report.TimeEntry) (string, error) {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, csvHeader)
	for _, row := range rows {
		data = append(data, []string{
			row.Description,
			row.TaskName,
			row.Start.Format("2006-01-02"),
			strconv.FormatFloat(row.DurationHours, 'f', 2, 64),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, record := range data {
		if err := writer.Write(record); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}
