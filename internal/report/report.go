// Package report renders job metrics into a PDF file with a bar chart,
// stored under a static directory for download over HTTP.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
	"github.com/JcKser/Iniciacao-Cientifica/internal/util"
)

// ErrNoMetrics indicates the job has no metric rows to report on.
var ErrNoMetrics = errors.New("no metrics recorded for job")

// metricsSource provides the job and metric rows for a report.
type metricsSource interface {
	GetJobByName(ctx context.Context, name string) (*models.Job, error)
	MetricsByJobName(ctx context.Context, name string) ([]models.JobMetric, error)
}

// Opts holds configuration for the report generator.
type Opts struct {
	StaticDir string
	Now       func() time.Time
}

// Option configures the report generator.
type Option func(*Opts)

// WithStaticDir sets the directory report files are written to.
func WithStaticDir(dir string) Option {
	return func(o *Opts) { o.StaticDir = dir }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Generator builds PDF metric reports.
type Generator struct {
	store     metricsSource
	staticDir string
	now       func() time.Time
}

// NewGenerator creates a Generator writing into the configured static
// directory (default "static").
func NewGenerator(store metricsSource, opts ...Option) *Generator {
	cfg := Opts{StaticDir: "static", Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{store: store, staticDir: cfg.StaticDir, now: cfg.Now}
}

// Generate renders the metrics report for a job and returns the file
// name under the static directory. Returns ErrNoMetrics when the job
// has no metric rows.
func (g *Generator) Generate(ctx context.Context, jobName string) (string, error) {
	job, err := g.store.GetJobByName(ctx, jobName)
	if err != nil {
		return "", fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return "", fmt.Errorf("job %q not found", jobName)
	}
	metrics, err := g.store.MetricsByJobName(ctx, jobName)
	if err != nil {
		return "", fmt.Errorf("failed to load job metrics: %w", err)
	}
	if len(metrics) == 0 {
		return "", ErrNoMetrics
	}

	totals := sumMetrics(metrics)
	png, err := renderChart(job.Name, totals)
	if err != nil {
		return "", fmt.Errorf("failed to render metrics chart: %w", err)
	}

	if err := os.MkdirAll(g.staticDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create static directory: %w", err)
	}
	fileName := util.GenerateReportFileName(job.Name, g.now())
	path := filepath.Join(g.staticDir, fileName)
	if err := writePDF(path, job, totals, png, g.now()); err != nil {
		return "", err
	}
	slog.Info("Report generated", "job", job.Name, "file", fileName)
	return fileName, nil
}

type metricTotals struct {
	Views                 int
	ApplicationsStarted   int
	ApplicationsCompleted int
	Dropouts              int
}

func sumMetrics(metrics []models.JobMetric) metricTotals {
	var t metricTotals
	for _, m := range metrics {
		t.Views += m.Views
		t.ApplicationsStarted += m.ApplicationsStarted
		t.ApplicationsCompleted += m.ApplicationsCompleted
		t.Dropouts += m.Dropouts
	}
	return t
}

func renderChart(jobName string, t metricTotals) ([]byte, error) {
	bar := chart.BarChart{
		Title:    fmt.Sprintf("Metricas - %s", jobName),
		Height:   512,
		BarWidth: 80,
		Bars: []chart.Value{
			{Value: float64(t.Views), Label: "Visualizacoes"},
			{Value: float64(t.ApplicationsStarted), Label: "Iniciadas"},
			{Value: float64(t.ApplicationsCompleted), Label: "Concluidas"},
			{Value: float64(t.Dropouts), Label: "Desistencias"},
		},
	}
	var buf bytes.Buffer
	if err := bar.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePDF(path string, job *models.Job, t metricTotals, png []byte, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("Relatório de Métricas - %s", job.Name)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em %s", now.Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Resumo da vaga"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Descrição: %s", job.Description)), "", "L", false)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Requisitos: %s", job.Requirements)), "", "L", false)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Salário: R$ %.2f", job.Salary)), "", "L", false)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Número de vagas: %d", job.Openings)), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Métricas acumuladas"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	rows := []struct {
		label string
		value int
	}{
		{"Visualizações", t.Views},
		{"Candidaturas iniciadas", t.ApplicationsStarted},
		{"Candidaturas concluídas", t.ApplicationsCompleted},
		{"Desistências", t.Dropouts},
	}
	for _, r := range rows {
		pdf.CellFormat(90, 7, tr(r.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", r.value), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("metrics-chart", opts, bytes.NewReader(png))
	pdf.ImageOptions("metrics-chart", 20, pdf.GetY(), 170, 0, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write report pdf: %w", err)
	}
	return nil
}
