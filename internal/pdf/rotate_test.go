package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/yourusername/rotate-pdf/internal/pdf/pdftest"
)

func newTestService() *Service {
	return NewService(Options{}, nil)
}

func TestProbeReportsPagesAndRotations(t *testing.T) {
	svc := newTestService()
	info, err := svc.Probe(context.Background(), pdftest.Build(-1, 90, 270))
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if info.Count != 3 {
		t.Fatalf("Count = %d, want 3", info.Count)
	}
	want := []int{0, 90, 270}
	for i, w := range want {
		if info.Rotations[i] != w {
			t.Fatalf("Rotations[%d] = %d, want %d", i, info.Rotations[i], w)
		}
	}
	if info.Original(4) != 0 {
		t.Fatalf("Original(4) = %d, want 0", info.Original(4))
	}
}

func TestProbeRejectsGarbage(t *testing.T) {
	svc := newTestService()
	_, err := svc.Probe(context.Background(), []byte("this is not a pdf"))
	var pdfErr *Error
	if !errors.As(err, &pdfErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if pdfErr.Code != CodeUnsupportedPDF {
		t.Fatalf("unexpected code: %s", pdfErr.Code)
	}
}

func TestApplyRotationsOnlyTouchesMappedPages(t *testing.T) {
	svc := newTestService()
	src := pdftest.Build(-1, -1, 180)

	out, err := svc.ApplyRotations(context.Background(), src, map[int]int{2: 90})
	if err != nil {
		t.Fatalf("ApplyRotations returned error: %v", err)
	}

	info, err := svc.Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("Probe of output returned error: %v", err)
	}
	want := []int{0, 90, 180}
	for i, w := range want {
		if info.Rotations[i] != w {
			t.Fatalf("page %d rotation = %d, want %d", i+1, info.Rotations[i], w)
		}
	}
}

func TestApplyRotationsSetsAbsoluteValue(t *testing.T) {
	svc := newTestService()
	src := pdftest.Build(90, 270)

	out, err := svc.ApplyRotations(context.Background(), src, map[int]int{1: 180, 2: 0})
	if err != nil {
		t.Fatalf("ApplyRotations returned error: %v", err)
	}
	info, err := svc.Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("Probe of output returned error: %v", err)
	}
	if info.Rotations[0] != 180 || info.Rotations[1] != 0 {
		t.Fatalf("unexpected rotations: %v", info.Rotations)
	}
}

func TestApplyRotationsWithEmptyMapKeepsDocument(t *testing.T) {
	svc := newTestService()
	out, err := svc.ApplyRotations(context.Background(), pdftest.Build(90, -1), nil)
	if err != nil {
		t.Fatalf("ApplyRotations returned error: %v", err)
	}
	info, err := svc.Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("Probe of output returned error: %v", err)
	}
	if info.Count != 2 || info.Rotations[0] != 90 || info.Rotations[1] != 0 {
		t.Fatalf("unexpected page info: %+v", info)
	}
}

func TestApplyRotationsValidatesInput(t *testing.T) {
	svc := newTestService()
	src := pdftest.Pages(2)

	cases := []map[int]int{
		{3: 90},
		{0: 90},
		{1: 45},
		{1: -90},
		{1: 360},
	}
	for _, rotations := range cases {
		_, err := svc.ApplyRotations(context.Background(), src, rotations)
		var pdfErr *Error
		if !errors.As(err, &pdfErr) || pdfErr.Code != CodeInvalidInput {
			t.Fatalf("rotations %v: expected INVALID_INPUT, got %v", rotations, err)
		}
	}
}

func TestApplyRotationsHonorsCanceledContext(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ApplyRotations(ctx, pdftest.Pages(1), map[int]int{1: 90}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderThumbnailRejectsInvalidPage(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.RenderThumbnail(context.Background(), "unused.pdf", 0, 0)
	var pdfErr *Error
	if !errors.As(err, &pdfErr) || pdfErr.Code != CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestImageConfigCarriesRotation(t *testing.T) {
	svc := NewService(Options{ThumbnailDPI: 48, ThumbnailFormat: "png"}, nil)

	cfg := svc.imageConfig("png", 270)
	if cfg.DPI != 48 || cfg.Format != "png" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Options["rotation"] != 270 {
		t.Fatalf("rotation option = %v, want 270", cfg.Options["rotation"])
	}

	cfg = svc.imageConfig("png", 0)
	if _, ok := cfg.Options["rotation"]; ok {
		t.Fatal("rotation option should be omitted for 0")
	}
}
