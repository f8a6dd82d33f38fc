package comment

import (
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	got := Render("iOS Simulator build", "https://github.com/acme/app/actions/runs/77/artifacts/9", at)

	want := "## iOS Simulator build\n\n" +
		"🔗 [Download link](https://github.com/acme/app/actions/runs/77/artifacts/9).\n\n\n" +
		"Note: if the download link expires, please re-run the workflow to generate a new build.\n\n\n" +
		"*Generated at 2026-05-01T07:30:00.000Z UTC*\n"
	if got != want {
		t.Errorf("Render mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
	if !strings.Contains(got, Heading("iOS Simulator build")) {
		t.Error("rendered body must contain its heading")
	}
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 678_900_000, time.UTC)
	if got := FormatTimestamp(at); got != "2026-01-02T03:04:05.678Z" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}
