package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"logvault/internal/domain/archive"
)

// Service renders operator-facing summary reports over the archive registry.
type Service struct {
	store archive.StoreAPI
}

func NewService(store archive.StoreAPI) *Service {
	return &Service{store: store}
}

// GenerateSummaryPDF renders the archive summary plus per-table stats into
// a PDF and returns its bytes.
func (s *Service) GenerateSummaryPDF(ctx context.Context) ([]byte, error) {
	summary, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}
	tableStats, err := s.store.ListTableStats(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Archive Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total archives: %d", summary.TotalArchives))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total archived records: %d", summary.TotalRecords))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total archive size: %s", humanize.Bytes(uint64(summary.TotalSizeBytes))))
	pdf.Ln(7)
	if summary.OldestArchive != nil && summary.NewestArchive != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Range: %s to %s",
			summary.OldestArchive.Format("2006-01-02"), summary.NewestArchive.Format("2006-01-02")))
		pdf.Ln(7)
	}
	for status, count := range summary.ByStatus {
		pdf.Cell(0, 8, fmt.Sprintf("  %s: %d", status, count))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Tracked tables")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, stats := range tableStats {
		last := "never"
		if stats.LastArchiveDate != nil {
			last = stats.LastArchiveDate.Format("2006-01-02")
		}
		pdf.Cell(0, 7, fmt.Sprintf("%s: %d rows, %s, last archived %s",
			stats.TableName, stats.CurrentRowCount,
			humanize.Bytes(uint64(stats.CurrentSizeBytes)), last))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
