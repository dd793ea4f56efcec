package schedulefile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"avatar_update_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

func writeScheduleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write schedule file: %v", err)
	}
	return path
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestLoadNestedForm(t *testing.T) {
	path := writeScheduleFile(t, `{
		"09": {"avatar": "cid-A"},
		"14": {"avatar": "cid-B", "banner": "cid-C"}
	}`)

	sched, err := NewFileSource(path, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(sched) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sched))
	}
	if sel := sched[9]; sel.AvatarCID != "cid-A" || sel.Banner != schedule.BannerKeep {
		t.Errorf("unexpected entry for 09: %+v", sel)
	}
	if sel := sched[14]; sel.AvatarCID != "cid-B" || sel.Banner != schedule.BannerSet || sel.BannerCID != "cid-C" {
		t.Errorf("unexpected entry for 14: %+v", sel)
	}
}

func TestLoadLegacyFlatForm(t *testing.T) {
	path := writeScheduleFile(t, `{"07": "cid-X", "23": "cid-Y"}`)

	sched, err := NewFileSource(path, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sel := sched[7]; sel.AvatarCID != "cid-X" || sel.Banner != schedule.BannerKeep {
		t.Errorf("unexpected entry for 07: %+v", sel)
	}
	if sel := sched[23]; sel.AvatarCID != "cid-Y" {
		t.Errorf("unexpected entry for 23: %+v", sel)
	}
}

func TestLoadMixedForms(t *testing.T) {
	path := writeScheduleFile(t, `{"06": "cid-F", "18": {"avatar": "cid-N", "banner": "cid-B"}}`)

	sched, err := NewFileSource(path, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(sched) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sched))
	}
}

func TestLoadBannerClearSemantics(t *testing.T) {
	path := writeScheduleFile(t, `{
		"10": {"avatar": "cid-A", "banner": ""},
		"11": {"avatar": "cid-B", "banner": null}
	}`)

	sched, err := NewFileSource(path, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sel := sched[10]; sel.Banner != schedule.BannerClear {
		t.Errorf("empty banner value must request a clear, got %+v", sel)
	}
	if sel := sched[11]; sel.Banner != schedule.BannerClear {
		t.Errorf("null banner value must request a clear, got %+v", sel)
	}
}

func TestLoadSkipsMalformedHourKeys(t *testing.T) {
	path := writeScheduleFile(t, `{
		"9": "cid-bad-width",
		"24": "cid-out-of-range",
		"ab": "cid-not-a-number",
		"12": "cid-good"
	}`)

	sched, err := NewFileSource(path, testLogger()).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(sched) != 1 {
		t.Fatalf("expected only the valid entry, got %d entries", len(sched))
	}
	if sel := sched[12]; sel.AvatarCID != "cid-good" {
		t.Errorf("unexpected entry for 12: %+v", sel)
	}
}

func TestLoadFailsWithoutValidEntries(t *testing.T) {
	path := writeScheduleFile(t, `{"xx": "cid-A"}`)

	if _, err := NewFileSource(path, testLogger()).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a schedule without valid entries")
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	if _, err := NewFileSource(path, testLogger()).Load(context.Background()); err == nil {
		t.Fatal("expected an error for a missing schedule file")
	}
}
