package schedulefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"avatar_update_bot/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// FileSource reads the hour-to-assets schedule from a JSON file. Two wire
// forms are accepted: the current nested form
//
//	{"09": {"avatar": "<cid>", "banner": "<cid>"}}
//
// and the legacy flat form that predates banner support:
//
//	{"09": "<cid>"}
//
// Both can appear in the same file. A banner key present with an empty or
// null value requests clearing the banner; an absent banner key requests no
// banner change.
type FileSource struct {
	path string
	log  *logrus.Logger
}

func NewFileSource(path string, log *logrus.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

// entryJSON is the nested wire form of a single hour slot. Banner stays raw so
// an explicit null can be told apart from an absent key.
type entryJSON struct {
	Avatar string          `json:"avatar"`
	Banner json.RawMessage `json:"banner"`
}

// Load reads and parses the schedule file. Malformed hour keys are logged and
// skipped rather than failing the whole file; a file yielding no valid entries
// is an error.
func (f *FileSource) Load(_ context.Context) (schedule.Schedule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", f.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file %s: %w", f.path, err)
	}

	sched := make(schedule.Schedule, len(raw))
	for key, val := range raw {
		hour, ok := parseHourKey(key)
		if !ok {
			f.log.Warnf("Ignoring malformed hour key %q in schedule file %s", key, f.path)
			continue
		}

		sel, err := parseSelection(val)
		if err != nil {
			f.log.Warnf("Ignoring unparseable entry for hour %q in schedule file %s: %v", key, f.path, err)
			continue
		}
		sched[hour] = sel
	}

	if len(sched) == 0 {
		return nil, fmt.Errorf("schedule file %s contains no valid entries", f.path)
	}
	return sched, nil
}

// parseHourKey accepts exactly the two-digit keys "00".."23".
func parseHourKey(key string) (int, bool) {
	if len(key) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(key)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func parseSelection(val json.RawMessage) (schedule.AssetSelection, error) {
	// Legacy flat form: the value is the avatar CID itself.
	var flat string
	if err := json.Unmarshal(val, &flat); err == nil {
		return schedule.AssetSelection{AvatarCID: flat}, nil
	}

	var entry entryJSON
	if err := json.Unmarshal(val, &entry); err != nil {
		return schedule.AssetSelection{}, fmt.Errorf("entry is neither a CID string nor an object: %w", err)
	}

	sel := schedule.AssetSelection{AvatarCID: entry.Avatar}
	if len(entry.Banner) == 0 {
		sel.Banner = schedule.BannerKeep
		return sel, nil
	}

	var bannerCID *string
	if err := json.Unmarshal(entry.Banner, &bannerCID); err != nil {
		return schedule.AssetSelection{}, fmt.Errorf("banner value is not a CID string or null: %w", err)
	}
	if bannerCID == nil || *bannerCID == "" {
		sel.Banner = schedule.BannerClear
		return sel, nil
	}
	sel.Banner = schedule.BannerSet
	sel.BannerCID = *bannerCID
	return sel, nil
}
