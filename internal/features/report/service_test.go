package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-elms/internal/features/audit"
	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func at(h int) *time.Time {
	t := time.Date(2025, 7, 10, h, 0, 0, 0, time.UTC)
	return &t
}

func sampleLetters() []*letter.Letter {
	return []*letter.Letter{
		{Reference: "ELMS-202507-0001", Status: letter.StatusDraft, Priority: letter.PriorityHigh},
		{Reference: "ELMS-202507-0002", Status: letter.StatusPendingApproval, SubmittedAt: at(1), IsConfidential: true},
		{Reference: "ELMS-202507-0003", Status: letter.StatusApproved, SubmittedAt: at(1), ApprovedAt: at(4)},
		{
			Reference: "ELMS-202507-0004", Status: letter.StatusSigned, Priority: letter.PriorityHigh,
			SubmittedAt: at(2), ApprovedAt: at(3), SignedAt: at(6),
			Signature: &letter.Signature{SignedAt: *at(6)},
		},
	}
}

func TestCalculateMetrics(t *testing.T) {
	m := CalculateMetrics(sampleLetters(), time.Date(2025, 7, 10, 23, 0, 0, 0, time.UTC))

	assert.Equal(t, 4, m.TotalLetters)
	assert.Equal(t, map[string]int{"Draft": 1, "Pending Approval": 1, "Approved": 1, "Rejected": 0, "Signed": 1}, m.ByStatus)
	assert.Equal(t, 1, m.PendingApprovals)
	assert.Equal(t, 3.5, m.AverageApprovalTimeHours)
	assert.Equal(t, 2, m.HighPriorityCount)
	assert.Equal(t, 1, m.ConfidentialCount)
	assert.Equal(t, 1, m.SignedToday)

	empty := CalculateMetrics(nil, time.Now())
	assert.Zero(t, empty.AverageApprovalTimeHours)
	assert.Len(t, empty.ByStatus, 5)
}

func TestWriteRegister(t *testing.T) {
	data, err := WriteRegister(sampleLetters())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Letters")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, ExportColumns, rows[0])
	assert.Equal(t, "ELMS-202507-0004", rows[4][0])
	assert.Equal(t, "2025-07-10 06:00:00", rows[4][8])
}

type fakeLister []*letter.Letter

func (f fakeLister) ListLetters(_ context.Context, _ permission.Actor, filter letter.Filter) ([]*letter.Letter, error) {
	var out []*letter.Letter
	for _, l := range f {
		if filter.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func TestReportPermissions(t *testing.T) {
	resolver, err := permission.NewDefaultResolver()
	require.NoError(t, err)
	svc := NewReportService(fakeLister(sampleLetters()), resolver, audit.NewAuditService(audit.NewMemoryAuditRepository(), nil), zap.NewNop())
	ctx := context.Background()

	writer := permission.Actor{ID: "w", Role: permission.RoleLetterWriter}
	signee := permission.Actor{ID: "s", Role: permission.RoleSignee}
	admin := permission.Actor{ID: "a", Role: permission.RoleAdmin}

	_, err = svc.Metrics(ctx, writer)
	assert.True(t, apperrors.IsPermission(err))
	m, err := svc.Metrics(ctx, signee)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalLetters)

	_, _, err = svc.ExportExcel(ctx, signee, "")
	assert.True(t, apperrors.IsPermission(err))
	data, name, err := svc.ExportExcel(ctx, admin, letter.StatusSigned)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, name, ".xlsx")
}
