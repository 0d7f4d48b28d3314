package util

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateProtocolID(t *testing.T) {
	now := time.Date(2025, 1, 14, 15, 30, 45, 0, time.UTC)
	id := GenerateProtocolID(now)
	if !strings.HasPrefix(id, "TICKET-20250114153045-") {
		t.Errorf("unexpected protocol format: %s", id)
	}
	if len(id) != len("TICKET-20250114153045-")+8 {
		t.Errorf("unexpected protocol length: %s", id)
	}
	other := GenerateProtocolID(now)
	if id == other {
		t.Error("protocol IDs generated in the same second must differ")
	}
}

func TestGenerateReportFileName(t *testing.T) {
	now := time.Date(2025, 1, 14, 15, 30, 45, 0, time.UTC)
	name := GenerateReportFileName("Analista de Dados", now)
	if !strings.HasPrefix(name, "relatorio_analista_de_dados_20250114153045_") {
		t.Errorf("unexpected report file name: %s", name)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("report file name must end in .pdf: %s", name)
	}
	if name == GenerateReportFileName("Analista de Dados", now) {
		t.Error("repeated generation must yield distinct file names")
	}
}

func TestSlugifyJobName(t *testing.T) {
	cases := map[string]string{
		"Analista de Dados":     "analista_de_dados",
		"Desenvolvedor Full/BE": "desenvolvedor_full_be",
		"qa":                    "qa",
	}
	for in, want := range cases {
		if got := SlugifyJobName(in); got != want {
			t.Errorf("SlugifyJobName(%q) = %q, want %q", in, got, want)
		}
	}
}
