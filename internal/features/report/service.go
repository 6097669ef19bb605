package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	common_models "go-elms/internal/common/models"
	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// LetterLister returns the letters visible to an actor.
type LetterLister interface {
	ListLetters(ctx context.Context, actor permission.Actor, filter letter.Filter) ([]*letter.Letter, error)
}

type ReportService interface {
	Metrics(ctx context.Context, actor permission.Actor) (*Metrics, error)
	ExportExcel(ctx context.Context, actor permission.Actor, status letter.Status) ([]byte, string, error)
}

type ReportServiceImpl struct {
	Letters      LetterLister
	Permissions  *permission.Resolver
	AuditService audit.AuditService
	Logger       *zap.Logger

	now func() time.Time
}

func NewReportService(letters LetterLister, permissions *permission.Resolver, auditService audit.AuditService, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		Letters:      letters,
		Permissions:  permissions,
		AuditService: auditService,
		Logger:       logger,
		now:          time.Now,
	}
}

// CalculateMetrics computes dashboard figures. Approval time runs from
// submission to signature, or to final approval for unsigned letters.
func CalculateMetrics(letters []*letter.Letter, now time.Time) *Metrics {
	m := &Metrics{
		TotalLetters: len(letters),
		ByStatus:     make(map[string]int, len(letter.AllStatuses)),
	}
	for _, s := range letter.AllStatuses {
		m.ByStatus[string(s)] = 0
	}

	today := now.UTC().Format("2006-01-02")
	var total time.Duration
	var approvals int

	for _, l := range letters {
		m.ByStatus[string(l.Status)]++
		if l.SubmittedAt != nil && (l.ApprovedAt != nil || l.SignedAt != nil) {
			end := l.ApprovedAt
			if l.SignedAt != nil {
				end = l.SignedAt
			}
			total += end.Sub(*l.SubmittedAt)
			approvals++
		}
		if l.Signature != nil && l.Signature.SignedAt.UTC().Format("2006-01-02") == today {
			m.SignedToday++
		}
		if l.Priority == letter.PriorityHigh {
			m.HighPriorityCount++
		}
		if l.IsConfidential {
			m.ConfidentialCount++
		}
	}

	m.PendingApprovals = m.ByStatus[string(letter.StatusPendingApproval)]
	if approvals > 0 {
		hours := total.Hours() / float64(approvals)
		m.AverageApprovalTimeHours = math.Round(hours*10) / 10
	}
	return m
}

func (s *ReportServiceImpl) Metrics(ctx context.Context, actor permission.Actor) (*Metrics, error) {
	if err := s.Permissions.Require(actor, permission.CanViewReports); err != nil {
		return nil, err
	}
	letters, err := s.Letters.ListLetters(ctx, actor, letter.Filter{})
	if err != nil {
		return nil, err
	}
	return CalculateMetrics(letters, s.now()), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// WriteRegister renders letters as an .xlsx workbook with a bold header row.
func WriteRegister(letters []*letter.Letter) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Letters"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, l := range letters {
		created := l.CreatedAt
		row := []interface{}{
			l.Reference,
			l.Subject,
			l.Department,
			string(l.Status),
			string(l.Priority),
			formatTime(&created),
			formatTime(l.SubmittedAt),
			formatTime(l.ApprovedAt),
			formatTime(l.SignedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportServiceImpl) ExportExcel(ctx context.Context, actor permission.Actor, status letter.Status) ([]byte, string, error) {
	if err := s.Permissions.Require(actor, permission.CanExportData); err != nil {
		return nil, "", err
	}
	letters, err := s.Letters.ListLetters(ctx, actor, letter.Filter{Status: status})
	if err != nil {
		return nil, "", err
	}
	data, err := WriteRegister(letters)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("letters_%s.xlsx", s.now().Format("20060102_150405"))
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionExport, "letters", "", map[string]common_models.Change{
		"export": {New: map[string]interface{}{"rows": len(letters), "status": string(status)}},
	})
	s.Logger.Info("Letter register exported", zap.Int("rows", len(letters)), zap.String("actor_id", actor.ID))
	return data, filename, nil
}
