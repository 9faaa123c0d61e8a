package profiling_test

import (
	"testing"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/logger"
	"github.com/jonesrussell/north-cloud/elastic-tool/internal/profiling"
)

func TestStartPyroscope_DisabledByDefault(t *testing.T) {
	t.Setenv("ENABLE_CONTINUOUS_PROFILING", "")

	p, err := profiling.StartPyroscope("elastic-tool", "test", logger.NewNop())
	if err != nil {
		t.Fatalf("StartPyroscope() error = %v", err)
	}
	if p != nil {
		t.Fatal("StartPyroscope() returned a profiler while disabled")
	}
	if err = p.Stop(); err != nil {
		t.Errorf("Stop() on nil profiler error = %v", err)
	}
}

func TestStartPprofServer_DisabledIsNoop(t *testing.T) {
	t.Setenv("ENABLE_PROFILING", "false")

	profiling.StartPprofServer(logger.NewNop())
}
