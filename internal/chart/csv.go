package chart

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"thrips/internal/core"
)

// Download is a file handed to the HTTP layer as an attachment.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Filename is the suggested name of the CSV export for a period.
func Filename(p core.Period) string {
	return fmt.Sprintf("thrips_%s.csv", p)
}

// CSV serializes buckets with a header row named after the period's key
// column followed by sumTea,sumOther.
func CSV(period core.Period, buckets []core.Bucket) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{period.Column(), "sumTea", "sumOther"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range buckets {
		row := []string{
			b.Key.Value,
			strconv.FormatInt(b.SumTea, 10),
			strconv.FormatInt(b.SumOther, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", b.Key.Value, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Export builds the CSV download for a period.
func Export(period core.Period, buckets []core.Bucket) (Download, error) {
	body, err := CSV(period, buckets)
	if err != nil {
		return Download{}, err
	}
	return Download{
		Filename:    Filename(period),
		ContentType: "text/csv; charset=utf-8",
		Body:        body,
	}, nil
}
