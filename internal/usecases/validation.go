package usecases

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const StartDateTimeLayout = "2006-01-02T15:04:05"

var hashtagRegexp = regexp.MustCompile(`^#[\p{L}\p{N}_]{1,50}$`)

func NewValidator() *validator.Validate {
	v := validator.New()
	// error is returned only for empty tag or nil function
	_ = v.RegisterValidation("hashtag", func(fl validator.FieldLevel) bool {
		return hashtagRegexp.MatchString(fl.Field().String())
	})
	return v
}

// ParseStartDateTime parses room start time given without a zone, as UTC.
// An empty string means the room has no scheduled start.
func ParseStartDateTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(StartDateTimeLayout, raw, time.UTC)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: start date time must be in %s format", ErrValidation, StartDateTimeLayout)
	}

	t = t.UTC()
	return &t, nil
}

// uniqueHashtags drops repeated hashtags keeping the first occurrence order.
func uniqueHashtags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}
	return unique
}
