// Package businessflow contains the business logic for the application.
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/tasksms/dashboard/models"
	"github.com/tasksms/dashboard/repository"
	"github.com/tasksms/dashboard/utils"
	"github.com/xuri/excelize/v2"
)

// ExportFlow renders the admin monitor as a downloadable XLSX workbook.
type ExportFlow interface {
	ExportMonitor(ctx context.Context, adminID uint, metadata *ClientMetadata) (filename string, content []byte, err error)
}

// ExportFlowImpl implements ExportFlow
type ExportFlowImpl struct {
	messageFlow MessageFlow
	auditRepo   repository.AuditLogRepository
}

// NewExportFlow creates a new export flow
func NewExportFlow(messageFlow MessageFlow, auditRepo repository.AuditLogRepository) ExportFlow {
	return &ExportFlowImpl{
		messageFlow: messageFlow,
		auditRepo:   auditRepo,
	}
}

const monitorSheet = "Monitor"

// ExportMonitor writes one row per inventory number: country, holder, and
// recent message activity.
func (f *ExportFlowImpl) ExportMonitor(ctx context.Context, adminID uint, metadata *ClientMetadata) (string, []byte, error) {
	rows, err := f.messageFlow.MonitorRows(ctx)
	if err != nil {
		return "", nil, err
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	index, err := workbook.NewSheet(monitorSheet)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return "", nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"Number", "Country", "Holder", "Messages", "Last Message", "Last Seen"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", nil, err
		}
		if err := workbook.SetCellValue(monitorSheet, cell, header); err != nil {
			return "", nil, err
		}
	}

	headerStyle, err := workbook.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = workbook.SetCellStyle(monitorSheet, "A1", "F1", headerStyle)
	}

	for i, row := range rows {
		values := []any{
			row.Number,
			row.CountryName,
			row.OwnerName,
			row.MessageCount,
			row.LastMessage,
			row.LastSeenAt,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", nil, err
			}
			if err := workbook.SetCellValue(monitorSheet, cell, value); err != nil {
				return "", nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return "", nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	recordAudit(ctx, f.auditRepo, &adminID, models.AuditActionMonitorExported, "monitor exported: "+strconv.Itoa(len(rows))+" rows", metadata, nil, true)

	filename := "monitor-" + utils.UTCNow().Format("20060102-150405") + ".xlsx"
	return filename, buf.Bytes(), nil
}
