package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JcKser/Iniciacao-Cientifica/internal/models"
)

type mockMetricsSource struct {
	job     *models.Job
	metrics []models.JobMetric
	err     error
}

func (m *mockMetricsSource) GetJobByName(_ context.Context, _ string) (*models.Job, error) {
	return m.job, m.err
}

func (m *mockMetricsSource) MetricsByJobName(_ context.Context, _ string) ([]models.JobMetric, error) {
	return m.metrics, m.err
}

func TestGenerate_WritesPDF(t *testing.T) {
	dir := t.TempDir()
	src := &mockMetricsSource{
		job: &models.Job{
			ID: 1, Name: "Analista de Dados",
			Description: "Análise de indicadores", Requirements: "SQL, Python",
			Salary: 5000, Openings: 2, Status: models.JobStatusOpen,
		},
		metrics: []models.JobMetric{
			{Views: 100, ApplicationsStarted: 30, ApplicationsCompleted: 18, Dropouts: 12},
			{Views: 50, ApplicationsStarted: 10, ApplicationsCompleted: 7, Dropouts: 3},
		},
	}
	fixed := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	g := NewGenerator(src, WithStaticDir(dir), WithClock(func() time.Time { return fixed }))

	fileName, err := g.Generate(context.Background(), "Analista de Dados")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(fileName, "relatorio_analista_de_dados_") || !strings.HasSuffix(fileName, ".pdf") {
		t.Errorf("unexpected file name %q", fileName)
	}
	info, err := os.Stat(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report file is empty")
	}
}

func TestGenerate_NoMetrics(t *testing.T) {
	src := &mockMetricsSource{job: &models.Job{ID: 1, Name: "Vaga Nova"}}
	g := NewGenerator(src, WithStaticDir(t.TempDir()))

	_, err := g.Generate(context.Background(), "Vaga Nova")
	if !errors.Is(err, ErrNoMetrics) {
		t.Errorf("expected ErrNoMetrics, got %v", err)
	}
}

func TestGenerate_UnknownJob(t *testing.T) {
	g := NewGenerator(&mockMetricsSource{}, WithStaticDir(t.TempDir()))

	_, err := g.Generate(context.Background(), "Inexistente")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestSumMetrics(t *testing.T) {
	totals := sumMetrics([]models.JobMetric{
		{Views: 1, ApplicationsStarted: 2, ApplicationsCompleted: 3, Dropouts: 4},
		{Views: 10, ApplicationsStarted: 20, ApplicationsCompleted: 30, Dropouts: 40},
	})
	if totals.Views != 11 || totals.ApplicationsStarted != 22 || totals.ApplicationsCompleted != 33 || totals.Dropouts != 44 {
		t.Errorf("unexpected totals: %+v", totals)
	}
}
