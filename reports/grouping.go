// Package reports holds the read-side core of the clinic app: the usage
// grouping engine, the generic search filter, and the query façade that
// composes them with the ledger package.
package reports

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/character8/medicx-clinic-central-main/models"
)

// UsageFilters narrows usage records before grouping. SearchTerm matches
// case-insensitively against patient name, medicine name or the numeric
// patient id; DateFilter is a prefix match on the raw usage_date string, so
// "2024-03" selects a whole month.
type UsageFilters struct {
	SearchTerm string
	DateFilter string
}

// GroupUsage transforms flat usage records into per-patient, per-day report
// aggregates. Records whose Medicine or Patient pointer is unresolved are
// returned separately as orphans and never grouped; the caller decides
// whether to log or surface them.
//
// The group key is (patient id, the date segment of usage_date before 'T'),
// taken verbatim from the stored string with no timezone conversion. Line
// items are not deduplicated by medicine. Groups come back sorted descending
// by reportDate, which is the usage_date of the first record placed into the
// group.
func GroupUsage(records []models.MedicineUsage, f UsageFilters) ([]models.GroupedUsageReport, []models.MedicineUsage) {
	var orphans []models.MedicineUsage
	filtered := make([]models.MedicineUsage, 0, len(records))
	for _, r := range records {
		if r.Medicine == nil || r.Patient == nil {
			orphans = append(orphans, r)
			continue
		}
		filtered = append(filtered, r)
	}

	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		lower := strings.ToLower(term)
		kept := filtered[:0]
		for _, r := range filtered {
			if strings.Contains(strings.ToLower(r.Patient.Name), lower) ||
				strings.Contains(strings.ToLower(r.Medicine.Name), lower) ||
				strings.Contains(strconv.Itoa(r.Patient.PatientID), lower) {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}

	if f.DateFilter != "" {
		kept := filtered[:0]
		for _, r := range filtered {
			if strings.HasPrefix(r.UsageDate, f.DateFilter) {
				kept = append(kept, r)
			}
		}
		filtered = kept
	}

	grouped := make(map[string]*models.GroupedUsageReport)
	var order []string
	for _, r := range filtered {
		day := r.UsageDate
		if i := strings.Index(day, "T"); i >= 0 {
			day = day[:i]
		}
		key := r.PatientID + "-" + day

		g, ok := grouped[key]
		if !ok {
			g = &models.GroupedUsageReport{
				ReportDate: r.UsageDate,
				Patient:    *r.Patient,
			}
			grouped[key] = g
			order = append(order, key)
		}
		g.Medicines = append(g.Medicines, models.UsageLine{Medicine: *r.Medicine, Quantity: r.QuantityUsed})
		g.TotalMedicines += r.QuantityUsed
	}

	groups := make([]models.GroupedUsageReport, 0, len(order))
	for _, key := range order {
		groups = append(groups, *grouped[key])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return usageTime(groups[i].ReportDate).After(usageTime(groups[j].ReportDate))
	})
	return groups, orphans
}

// usageTime parses the stored usage_date string. Dates come back from the
// store either as full timestamps or bare dates.
func usageTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Paginate slices items for a 1-indexed page. A page beyond the last yields
// an empty slice, never an error.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
