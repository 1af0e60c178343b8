package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCadence is the hourly cron expression tasks fall back to.
const DefaultCadence = "0 * * * *"

// NormalizeCadence validates a 5-field cron expression and returns it, or
// the hourly default when the expression is empty or invalid. The cadence
// is informational: due-selection uses a fixed staleness window, so a bad
// expression must not block task creation.
func NormalizeCadence(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultCadence
	}
	if err := validateCadence(spec); err != nil {
		return DefaultCadence
	}
	return spec
}

func validateCadence(spec string) error {
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return fmt.Errorf("invalid cron spec: %s", spec)
	}
	for i, f := range fields {
		minValue, maxValue := cronFieldBounds(i)
		if err := checkCronField(f, minValue, maxValue); err != nil {
			return fmt.Errorf("invalid cron field %d: %w", i+1, err)
		}
	}
	return nil
}

func cronFieldBounds(index int) (int, int) {
	switch index {
	case 0:
		return 0, 59
	case 1:
		return 0, 23
	case 2:
		return 1, 31
	case 3:
		return 1, 12
	default:
		return 0, 6
	}
}

func checkCronField(raw string, boundsMin int, boundsMax int) error {
	field := strings.TrimSpace(raw)
	if field == "*" {
		return nil
	}
	if strings.HasPrefix(field, "*/") {
		step, err := strconv.Atoi(strings.TrimPrefix(field, "*/"))
		if err != nil || step <= 0 {
			return fmt.Errorf("invalid step: %s", field)
		}
		return nil
	}
	value, err := strconv.Atoi(field)
	if err != nil {
		return fmt.Errorf("unsupported field: %s", field)
	}
	if value < boundsMin || value > boundsMax {
		return fmt.Errorf("value out of range: %s", field)
	}
	return nil
}
