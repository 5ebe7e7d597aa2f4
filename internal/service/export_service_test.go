package service

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

type machineListerStub struct {
	machines []models.Machine
}

func (s *machineListerStub) FindByID(ctx context.Context, id string) (*models.Machine, error) {
	for _, machine := range s.machines {
		if machine.ID == id {
			cp := machine
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *machineListerStub) List(ctx context.Context, filter models.MachineFilter) ([]models.Machine, int, error) {
	return s.machines, len(s.machines), nil
}

type assignmentListerStub struct {
	byMachine map[string][]models.AssignmentDetail
}

func (s *assignmentListerStub) ListByMachine(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error) {
	return s.byMachine[machineID], nil
}

func exportDetail(workOrder, machineID string, start time.Time, hours int, quantity int) models.AssignmentDetail {
	return models.AssignmentDetail{
		Assignment: models.Assignment{
			ID:             workOrder + "-" + machineID,
			MachineID:      machineID,
			ScheduledStart: start,
			ScheduledEnd:   start.Add(time.Duration(hours) * time.Hour),
			Quantity:       quantity,
			Status:         models.AssignmentScheduled,
		},
		MachineCode:     machineID,
		WorkOrderNumber: workOrder,
		CustomerName:    "Acme",
	}
}

func newExportFixture(windowStart time.Time) *ExportService {
	machines := &machineListerStub{machines: []models.Machine{
		{ID: "m-1", Code: "CNC-01", Name: "Lathe"},
		{ID: "m-2", Code: "CNC-02", Name: "Mill"},
	}}
	assignments := &assignmentListerStub{byMachine: map[string][]models.AssignmentDetail{
		"m-1": {
			exportDetail("WO-1001", "m-1", windowStart.Add(2*time.Hour), 3, 400),
			// Ends the day before the window opens.
			exportDetail("WO-0900", "m-1", windowStart.Add(-26*time.Hour), 2, 100),
		},
		"m-2": {
			// Straddles the window start and must be included.
			exportDetail("WO-1002", "m-2", windowStart.Add(-1*time.Hour), 4, 250),
		},
	}}
	return NewExportService(machines, assignments, "Factory Schedule", nil)
}

func TestExportScheduleCSVFiltersWindow(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	result, err := svc.ExportSchedule(context.Background(), windowStart, models.ZoomHour, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule.csv", result.Filename)

	body := string(result.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	// Header plus one in-window row per machine.
	require.Len(t, lines, 3)
	assert.Equal(t, "Machine,Work Order,Customer,Start,End,Qty,Status", lines[0])
	assert.Contains(t, body, "WO-1001")
	assert.Contains(t, body, "WO-1002")
	assert.NotContains(t, body, "WO-0900")
	assert.Contains(t, body, "400")
	assert.Contains(t, body, "scheduled")
}

func TestExportSchedulePDF(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	result, err := svc.ExportSchedule(context.Background(), windowStart, models.ZoomDay, FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "schedule.pdf", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestExportScheduleDefaultsToPDF(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	result, err := svc.ExportSchedule(context.Background(), windowStart, models.ZoomHour, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
}

func TestExportMachineSchedule(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	result, err := svc.ExportMachineSchedule(context.Background(), "m-2", windowStart, models.ZoomHour, FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "schedule-CNC-02.csv", result.Filename)
	body := string(result.Content)
	assert.Contains(t, body, "WO-1002")
	assert.NotContains(t, body, "WO-1001")
}

func TestExportMachineScheduleUnknownMachine(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	_, err := svc.ExportMachineSchedule(context.Background(), "m-404", windowStart, models.ZoomHour, FormatCSV)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestExportScheduleUnknownFormat(t *testing.T) {
	windowStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	svc := newExportFixture(windowStart)

	_, err := svc.ExportSchedule(context.Background(), windowStart, models.ZoomHour, "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestExportScheduleUnknownZoom(t *testing.T) {
	svc := newExportFixture(time.Now())

	_, err := svc.ExportSchedule(context.Background(), time.Now(), models.ZoomLevel("month"), FormatCSV)
	require.Error(t, err)
}
