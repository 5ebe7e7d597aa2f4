package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
	"github.com/oriel-mfg/factory-ops-api/pkg/export"
)

// Export formats.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

type machineLister interface {
	FindByID(ctx context.Context, id string) (*models.Machine, error)
	List(ctx context.Context, filter models.MachineFilter) ([]models.Machine, int, error)
}

type assignmentLister interface {
	ListByMachine(ctx context.Context, machineID string, status models.AssignmentStatus) ([]models.AssignmentDetail, error)
}

// ExportResult is a rendered schedule document.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService serializes the machine/assignment view within a
// timeline window into a printable document. Formatting only; no
// business logic.
type ExportService struct {
	machines    machineLister
	assignments assignmentLister
	pdf         *export.PDFExporter
	csv         *export.CSVExporter
	title       string
	logger      *zap.Logger
}

// NewExportService creates a service instance.
func NewExportService(machines machineLister, assignments assignmentLister, title string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Machine Schedule"
	}
	return &ExportService{
		machines:    machines,
		assignments: assignments,
		pdf:         export.NewPDFExporter(),
		csv:         export.NewCSVExporter(),
		title:       title,
		logger:      logger,
	}
}

var scheduleHeaders = []string{"Work Order", "Customer", "Start", "End", "Qty", "Status"}

// ExportSchedule renders the schedule of every machine within the
// window defined by start and zoom.
func (s *ExportService) ExportSchedule(ctx context.Context, start time.Time, zoom models.ZoomLevel, format string) (*ExportResult, error) {
	projection, err := ProjectTimeline(start, zoom)
	if err != nil {
		return nil, err
	}

	machines, _, err := s.machines.List(ctx, models.MachineFilter{PageSize: 500})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list machines")
	}

	sections := make([]export.Section, 0, len(machines))
	for _, machine := range machines {
		section, err := s.buildSection(ctx, machine, projection)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
	return s.render(sections, projection, format, "schedule")
}

// ExportMachineSchedule renders a single machine's schedule within the
// window.
func (s *ExportService) ExportMachineSchedule(ctx context.Context, machineID string, start time.Time, zoom models.ZoomLevel, format string) (*ExportResult, error) {
	projection, err := ProjectTimeline(start, zoom)
	if err != nil {
		return nil, err
	}

	machine, err := s.machines.FindByID(ctx, machineID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "machine not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load machine")
	}

	section, err := s.buildSection(ctx, *machine, projection)
	if err != nil {
		return nil, err
	}
	return s.render([]export.Section{section}, projection, format, "schedule-"+machine.Code)
}

func (s *ExportService) buildSection(ctx context.Context, machine models.Machine, projection models.TimelineProjection) (export.Section, error) {
	assignments, err := s.assignments.ListByMachine(ctx, machine.ID, "")
	if err != nil {
		return export.Section{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list machine assignments")
	}

	rows := make([]map[string]string, 0, len(assignments))
	for _, assignment := range assignments {
		if !assignment.ScheduledStart.Before(projection.WindowEnd) || !assignment.ScheduledEnd.After(projection.WindowStart) {
			continue
		}
		rows = append(rows, map[string]string{
			"Work Order": assignment.WorkOrderNumber,
			"Customer":   assignment.CustomerName,
			"Start":      assignment.ScheduledStart.UTC().Format("2006-01-02 15:04"),
			"End":        assignment.ScheduledEnd.UTC().Format("2006-01-02 15:04"),
			"Qty":        fmt.Sprintf("%d", assignment.Quantity),
			"Status":     string(assignment.Status),
		})
	}

	return export.Section{
		Heading: fmt.Sprintf("%s (%s)", machine.Code, machine.Name),
		Data:    export.Dataset{Headers: scheduleHeaders, Rows: rows},
	}, nil
}

func (s *ExportService) render(sections []export.Section, projection models.TimelineProjection, format, baseName string) (*ExportResult, error) {
	subtitle := fmt.Sprintf("%s to %s",
		projection.WindowStart.UTC().Format("2006-01-02 15:04"),
		projection.WindowEnd.UTC().Format("2006-01-02 15:04"),
	)

	switch format {
	case FormatPDF, "":
		content, err := s.pdf.Render(export.Document{Title: s.title, Subtitle: subtitle, Sections: sections})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: baseName + ".pdf"}, nil
	case FormatCSV:
		flat := export.Dataset{Headers: append([]string{"Machine"}, scheduleHeaders...)}
		for _, section := range sections {
			for _, row := range section.Data.Rows {
				merged := map[string]string{"Machine": section.Heading}
				for k, v := range row {
					merged[k] = v
				}
				flat.Rows = append(flat.Rows, merged)
			}
		}
		content, err := s.csv.Render(flat)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: baseName + ".csv"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}
}
