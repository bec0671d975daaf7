package processor

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/utils"
)

// JoinVariant selects the key set used to attach weather to flights.
type JoinVariant int

const (
	// JoinOriginHour joins on {origin, time_hour}.
	JoinOriginHour JoinVariant = iota
	// JoinCalendarHour additionally keys on {year, month, day, hour}.
	JoinCalendarHour
)

func ParseJoinVariant(s string) (JoinVariant, error) {
	switch s {
	case "origin_hour":
		return JoinOriginHour, nil
	case "calendar_hour", "":
		return JoinCalendarHour, nil
	default:
		return 0, fmt.Errorf("unknown join variant %q", s)
	}
}

func (v JoinVariant) Keys() []string {
	switch v {
	case JoinOriginHour:
		return []string{"origin", "time_hour"}
	default:
		return []string{"origin", "time_hour", "year", "month", "day", "hour"}
	}
}

func (v JoinVariant) String() string {
	if v == JoinOriginHour {
		return "origin_hour"
	}
	return "calendar_hour"
}

// CardinalityError reports a left join that changed the flight row
// count, which means the weather table had duplicate key rows.
type CardinalityError struct {
	Keys     []string
	Expected int
	Actual   int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("left join on {%s} changed row count: expected %d rows, got %d (duplicate weather keys)",
		strings.Join(e.Keys, ", "), e.Expected, e.Actual)
}

// LeftJoinWeather attaches at most one weather observation to every
// flight. Flights without a matching observation keep NA weather
// fields. The output must have exactly one row per input flight; a
// violation is returned as *CardinalityError rather than silently
// fanning out.
func LeftJoinWeather(flights, weather dataframe.DataFrame, variant JoinVariant) (dataframe.DataFrame, error) {
	keys := variant.Keys()
	if missing := utils.MissingColumns(flights, keys...); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("flight table missing join columns %v", missing)
	}
	if missing := utils.MissingColumns(weather, keys...); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("weather table missing join columns %v", missing)
	}

	// With the short key set the calendar columns exist on both sides
	// without being keys; drop the weather copies so the joined frame
	// keeps a single set.
	if variant == JoinOriginHour {
		redundant := []string{}
		for _, c := range []string{"year", "month", "day", "hour"} {
			if utils.HasColumn(weather, c) {
				redundant = append(redundant, c)
			}
		}
		if len(redundant) > 0 {
			weather = weather.Drop(redundant)
			if weather.Err != nil {
				return dataframe.DataFrame{}, fmt.Errorf("drop redundant weather columns: %w", weather.Err)
			}
		}
	}

	joined := flights.LeftJoin(weather, keys...)
	if joined.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("left join flights to weather: %w", joined.Err)
	}

	if joined.Nrow() != flights.Nrow() {
		return dataframe.DataFrame{}, &CardinalityError{
			Keys:     keys,
			Expected: flights.Nrow(),
			Actual:   joined.Nrow(),
		}
	}

	return joined, nil
}

// DuplicateKeyCount counts rows beyond the first per key combination.
// A non-zero result on the weather table predicts a join fan-out.
func DuplicateKeyCount(df dataframe.DataFrame, keys ...string) (int, error) {
	if missing := utils.MissingColumns(df, keys...); len(missing) > 0 {
		return 0, fmt.Errorf("duplicate key count: missing columns %v", missing)
	}

	seen := make(map[string]struct{}, df.Nrow())
	dups := 0
	for i := 0; i < df.Nrow(); i++ {
		parts := make([]string, len(keys))
		for j, k := range keys {
			parts[j] = df.Col(k).Elem(i).String()
		}
		key := strings.Join(parts, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups, nil
}
