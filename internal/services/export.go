package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"
)

// ExportLeadsCSV renders leads as a CSV download for quiz owners: one row
// per lead with contact fields, score and result, plus one column per
// answered element. Element columns are sorted for stable output.
func ExportLeadsCSV(leads []*Lead) ([]byte, error) {
	elementSet := map[string]struct{}{}
	for _, l := range leads {
		for _, a := range l.Answers {
			elementSet[a.ElementID] = struct{}{}
		}
	}
	elements := make([]string, 0, len(elementSet))
	for id := range elementSet {
		elements = append(elements, id)
	}
	sort.Strings(elements)

	sorted := append([]*Lead(nil), leads...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := append([]string{"lead_id", "name", "email", "phone", "score", "result_category", "created_at"}, elements...)
	_ = w.Write(header)
	for _, l := range sorted {
		byElement := make(map[string]string, len(l.Answers))
		for _, a := range l.Answers {
			byElement[a.ElementID] = a.Value
		}
		rec := []string{
			l.ID,
			l.Name,
			l.Email,
			l.Phone,
			strconv.Itoa(l.Score),
			l.ResultCategory,
			l.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, el := range elements {
			rec = append(rec, byElement[el])
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
