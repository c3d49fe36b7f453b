// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/danielhkuo/ballotbox/models"
)

// Election is the election definition loaded at startup
type Election struct {
	Period         models.ElectionPeriod
	Offices        []models.OfficeInfo
	VoterIDLength  int
	VoterIDPattern string
}

// DefaultOffices are the student council positions
var DefaultOffices = []models.OfficeInfo{
	{ID: "president", Title: "นายกสโมสร"},
	{ID: "vice-president-1", Title: "อุปนายกคนที่ 1"},
	{ID: "vice-president-2", Title: "อุปนายกคนที่ 2"},
	{ID: "secretary", Title: "เลขานุการ"},
	{ID: "treasurer", Title: "เหรัญญิก"},
	{ID: "student-relations", Title: "ประธานฝ่ายนิสิตสัมพันธ์"},
	{ID: "academic", Title: "ประธานฝ่ายวิชาการ"},
	{ID: "public-service", Title: "ประธานฝ่ายพัฒนาสังคมและบำเพ็ญประโยชน์"},
	{ID: "art", Title: "ประธานฝ่ายศิลปะและวัฒนธรรม"},
	{ID: "sport", Title: "ประธานฝ่ายกีฬา"},
}

// LoadElection reads the election definition from path (yaml, json or
// toml by extension). ELECTION_* environment variables override file
// values, e.g. ELECTION_VOTE_START.
func LoadElection(path string) (Election, error) {
	v := viper.New()

	v.SetDefault("voter_id_length", 10)
	v.SetDefault("voter_id_pattern", `^\d{8}23$`)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Election{}, fmt.Errorf("failed to read election file: %w", err)
		}
		// No file, rely on env vars
	}

	v.SetEnvPrefix("ELECTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"vote_start", "vote_end", "result_announcement"} {
		if err := v.BindEnv(key); err != nil {
			return Election{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var (
		e   Election
		err error
	)
	if e.Period.VoteStart, err = timeKey(v, "vote_start"); err != nil {
		return Election{}, err
	}
	if e.Period.VoteEnd, err = timeKey(v, "vote_end"); err != nil {
		return Election{}, err
	}
	if e.Period.ResultAnnouncement, err = timeKey(v, "result_announcement"); err != nil {
		return Election{}, err
	}

	if v.IsSet("offices") {
		if err := v.UnmarshalKey("offices", &e.Offices); err != nil {
			return Election{}, fmt.Errorf("failed to parse offices: %w", err)
		}
	} else {
		e.Offices = append([]models.OfficeInfo(nil), DefaultOffices...)
	}

	e.VoterIDLength = v.GetInt("voter_id_length")
	e.VoterIDPattern = v.GetString("voter_id_pattern")

	if err := e.Validate(); err != nil {
		return Election{}, fmt.Errorf("invalid election definition: %w", err)
	}
	return e, nil
}

func timeKey(v *viper.Viper, key string) (time.Time, error) {
	if !v.IsSet(key) {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	// RFC 3339 demands a zone offset, so a bare local time cannot slip
	// through as UTC
	raw := v.GetString(key)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want RFC 3339 with a zone offset: %w", key, raw, err)
	}
	return t, nil
}

func (e Election) Validate() error {
	if err := e.Period.Validate(); err != nil {
		return err
	}
	if len(e.Offices) == 0 {
		return errors.New("at least one office is required")
	}
	seen := make(map[models.Office]bool, len(e.Offices))
	for _, o := range e.Offices {
		if o.ID == "" {
			return errors.New("office id must not be empty")
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate office %q", o.ID)
		}
		seen[o.ID] = true
	}
	if e.VoterIDLength <= 0 {
		return errors.New("voter_id_length must be positive")
	}
	if _, err := regexp.Compile(e.VoterIDPattern); err != nil {
		return fmt.Errorf("invalid voter_id_pattern: %w", err)
	}
	return nil
}
