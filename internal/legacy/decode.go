// Package legacy decodes loosely typed documents exported from the previous
// document database (users, portfolios, job posts, applications) into the
// typed records the engine works with.
package legacy

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/mitchellh/mapstructure"
)

var (
	dateType        = reflect.TypeOf(types.Date{})
	degreeType      = reflect.TypeOf(types.DegreeLevel(0))
	proficiencyType = reflect.TypeOf(types.ProficiencyLevel(0))
	tierType        = reflect.TypeOf(types.SubscriptionTier(0))
)

// decode copies a raw document into out, converting ObjectIds, dates, levels
// and tiers on the way.
func decode(input any, out any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			objectIDHook,
			typedValueHook,
		),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// objectIDHook unwraps extended-JSON ids such as {"$oid": "..."} into strings.
func objectIDHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if m, ok := data.(map[string]any); ok {
		if oid, ok := m["$oid"].(string); ok {
			return oid, nil
		}
	}
	return data, nil
}

func typedValueHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to {
	case dateType:
		return toDate(data)
	case degreeType:
		if s, ok := data.(string); ok {
			return types.ParseDegreeLevel(s), nil
		}
	case proficiencyType:
		if s, ok := data.(string); ok {
			return parseLanguageLevel(s), nil
		}
	case tierType:
		if s, ok := data.(string); ok {
			return types.ParseSubscriptionTier(s), nil
		}
	}
	return data, nil
}

// toDate accepts date strings, bare years, time values and {"$date": ...}.
func toDate(data any) (types.Date, error) {
	switch v := data.(type) {
	case nil:
		return types.Date{}, nil
	case types.Date:
		return v, nil
	case time.Time:
		return types.Date{Time: v.UTC()}, nil
	case string:
		return types.ParseDate(v)
	case int:
		return yearDate(v), nil
	case int64:
		return yearDate(int(v)), nil
	case float64:
		return yearDate(int(v)), nil
	case map[string]any:
		if inner, ok := v["$date"]; ok {
			return toDate(inner)
		}
	}
	return types.Date{}, fmt.Errorf("unsupported date value %v (%T)", data, data)
}

func yearDate(year int) types.Date {
	if year <= 0 {
		return types.Date{}
	}
	return types.NewDate(year, time.January, 1)
}

// cefrByWord maps descriptive levels used in older portfolios to CEFR.
var cefrByWord = map[string]types.ProficiencyLevel{
	"beginner":     types.LevelA1,
	"elementary":   types.LevelA2,
	"intermediate": types.LevelB1,
	"upper":        types.LevelB2,
	"advanced":     types.LevelC1,
	"fluent":       types.LevelC1,
	"native":       types.LevelC2,
	"bilingual":    types.LevelC2,
}

func parseLanguageLevel(s string) types.ProficiencyLevel {
	if level := types.ParseProficiency(s); level != types.LevelUnknown {
		return level
	}
	key := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(key, "upper") {
		return types.LevelB2
	}
	return cefrByWord[key]
}

// languageCodes maps language names to the codes job requirements use.
var languageCodes = map[string]string{
	"english":  "en",
	"anglais":  "en",
	"french":   "fr",
	"francais": "fr",
	"arabic":   "ar",
	"arabe":    "ar",
	"german":   "de",
	"spanish":  "es",
	"italian":  "it",
}

func languageCode(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if code, ok := languageCodes[key]; ok {
		return code
	}
	return key
}

// splitList flattens entries that hold several comma, semicolon or pipe
// separated values and drops blanks.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		}) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return types.DedupeFold(out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
