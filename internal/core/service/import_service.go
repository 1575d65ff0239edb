package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdesk/access-directory/internal/api/metrics"
	"github.com/insightdesk/access-directory/internal/core/domain"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

// Required CSV column names. These are a bit-exact contract with the
// purchase exports the pipeline reconciles against.
const (
	columnDate   = "Date"
	columnEmail  = "Email"
	columnStatus = "Status"
	columnName   = "Name"
)

// purchaseDateLayouts are tried in order; the first match wins. Time-bearing
// layouts come before date-only ones so a timestamped value is never
// truncated to midnight by an earlier date-only match.
var purchaseDateLayouts = []string{
	"02/01/06 15:04",
	"02/01/2006 15:04",
	"02/01/06",
	"02/01/2006",
}

// reportDateLayout is the human-readable format used in import reports.
const reportDateLayout = "02 Jan 2006"

// successStatus is the only Status value that grants access. The comparison
// is case-sensitive after trimming, matching the upstream export.
const successStatus = "Success"

// ImportService reconciles external purchase exports into the directory.
// Rows flow through the same record-construction path as manual
// registration, so an import can never create a record shape an admin add
// could not.
type ImportService struct {
	directory *DirectoryService
	logger    zerolog.Logger
	now       func() time.Time
}

func NewImportService(directory *DirectoryService, logger zerolog.Logger) *ImportService {
	return &ImportService{
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}
}

// purchaseRow is one CSV row that survived filtering. Rows keep their CSV
// order until sorted, so date ties resolve to original file order.
type purchaseRow struct {
	date  time.Time
	email string
	name  string
}

// Import runs the pipeline: schema check, per-row filtering, date parsing,
// chronological sort, sequential upsert, per-row notification. The schema
// check is all-or-nothing; after it passes, each row is best-effort and a
// failing row never rolls back rows already committed.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ports.ImportReport, error) {
	rows, report, err := s.parseRows(r)
	if err != nil {
		return nil, err
	}

	// Stable ascending sort by purchase date; ties keep CSV order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})

	for _, row := range rows {
		// "now" is re-evaluated per row on purpose: access-granted
		// timestamps record when each row was processed, not when the
		// batch started.
		accessGranted := s.now().UTC()
		record := s.directory.buildRecord(row.email, row.name, "", []string{domain.AllDashboards}, accessGranted, row.date)

		if err := s.directory.repo.Upsert(ctx, record); err != nil {
			report.FailedRows++
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			s.logger.Error().Err(err).Str("email", row.email).Msg("import row upsert failed")
			continue
		}

		metrics.ImportRowsTotal.WithLabelValues("imported").Inc()
		metrics.ClientsRegisteredTotal.WithLabelValues("import").Inc()
		report.Imported = append(report.Imported, ports.ImportedRow{
			Name:                 row.name,
			Email:                row.email,
			PurchaseDateDisplay:  row.date.Format(reportDateLayout),
			AccessGrantedDisplay: accessGranted.Format(reportDateLayout),
		})

		s.directory.dispatchNotification(ctx, record)
	}

	s.logger.Info().
		Int("imported", len(report.Imported)).
		Int("skipped_no_email", report.SkippedNoEmail).
		Int("skipped_non_success", report.SkippedNonSuccess).
		Int("skipped_bad_date", report.SkippedBadDate).
		Int("failed", report.FailedRows).
		Msg("bulk import finished")

	return report, nil
}

// parseRows reads the CSV stream, validates the header, and applies the
// per-row filters. Filter order matters: a row missing its email is counted
// as such even if its status would also have excluded it.
func (s *ImportService) parseRows(r io.Reader) ([]purchaseRow, *ports.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unreadable CSV header", domain.ErrValidation)
	}

	cols, err := columnIndexes(header)
	if err != nil {
		return nil, nil, err
	}

	report := &ports.ImportReport{}
	var rows []purchaseRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed line: treat like any other unusable row
			report.SkippedBadDate++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		email := strings.TrimSpace(field(record, cols[columnEmail]))
		if email == "" {
			report.SkippedNoEmail++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if strings.TrimSpace(field(record, cols[columnStatus])) != successStatus {
			report.SkippedNonSuccess++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		date, ok := parsePurchaseDate(field(record, cols[columnDate]))
		if !ok {
			report.SkippedBadDate++
			metrics.ImportRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		rows = append(rows, purchaseRow{
			date:  date,
			email: email,
			name:  strings.TrimSpace(field(record, cols[columnName])),
		})
	}

	return rows, report, nil
}

// columnIndexes locates the required columns in the header, in any order.
// A missing column fails the whole import before any row is touched.
func columnIndexes(header []string) (map[string]int, error) {
	cols := make(map[string]int, 4)
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnDate, columnEmail, columnStatus, columnName} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: CSV is missing required column %q", domain.ErrValidation, required)
		}
	}
	return cols, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parsePurchaseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
