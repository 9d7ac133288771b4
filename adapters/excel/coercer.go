package excel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"contractbot/domain/dataset"
)

// TypeCoercer infers column types and converts raw strings into typed cells
type TypeCoercer struct {
	timestampFormats []string
}

var thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// NewTypeCoercer creates a coercer with the default timestamp layouts
func NewTypeCoercer() *TypeCoercer {
	return &TypeCoercer{
		timestampFormats: []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
			"2006-01-02",
			"2006/01/02",
			"01/02/2006",
			"1/2/2006",
			"01-02-06",
			"02-Jan-2006",
			"2-Jan-06",
		},
	}
}

// DetectType returns the type of a single non-empty raw value
func (c *TypeCoercer) DetectType(raw string) dataset.ColumnType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dataset.TypeString
	}
	if _, ok := c.parseInteger(raw); ok {
		return dataset.TypeInteger
	}
	if _, ok := c.parseFloat(raw); ok {
		return dataset.TypeFloat
	}
	if _, ok := c.parseBoolean(raw); ok {
		return dataset.TypeBoolean
	}
	if _, ok := c.parseTimestamp(raw); ok {
		return dataset.TypeDatetime
	}
	return dataset.TypeString
}

// InferColumn returns the type of the first non-empty value, widened from
// integer to float when any later value is fractional
func (c *TypeCoercer) InferColumn(values []string) dataset.ColumnType {
	typ := dataset.TypeString
	found := false
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if !found {
			typ = c.DetectType(v)
			found = true
			if typ != dataset.TypeInteger {
				return typ
			}
			continue
		}
		if _, ok := c.parseInteger(strings.TrimSpace(v)); ok {
			continue
		}
		if _, ok := c.parseFloat(strings.TrimSpace(v)); ok {
			typ = dataset.TypeFloat
		}
	}
	return typ
}

// Conforms reports whether every non-empty value coerces to typ
func (c *TypeCoercer) Conforms(values []string, typ dataset.ColumnType) bool {
	for _, v := range values {
		if _, err := c.Coerce(v, typ); err != nil {
			return false
		}
	}
	return true
}

// Coerce converts raw into a cell of the given column type
func (c *TypeCoercer) Coerce(raw string, typ dataset.ColumnType) (dataset.Cell, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return dataset.NullCell(), nil
	}

	switch typ {
	case dataset.TypeInteger:
		if v, ok := c.parseInteger(raw); ok {
			return dataset.Cell{Value: v, Raw: raw}, nil
		}
	case dataset.TypeFloat:
		if v, ok := c.parseFloat(raw); ok {
			return dataset.Cell{Value: v, Raw: raw}, nil
		}
	case dataset.TypeBoolean:
		if v, ok := c.parseBoolean(raw); ok {
			return dataset.Cell{Value: v, Raw: raw}, nil
		}
	case dataset.TypeDatetime:
		if v, ok := c.parseTimestamp(raw); ok {
			return dataset.Cell{Value: v, Raw: raw}, nil
		}
	default:
		return dataset.Cell{Value: raw, Raw: raw}, nil
	}
	return dataset.Cell{}, fmt.Errorf("cannot parse %q as %s", raw, typ)
}

func (c *TypeCoercer) parseInteger(s string) (int64, bool) {
	if thousandsPattern.MatchString(s) && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func (c *TypeCoercer) parseFloat(s string) (float64, bool) {
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func (c *TypeCoercer) parseBoolean(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

func (c *TypeCoercer) parseTimestamp(s string) (time.Time, bool) {
	for _, format := range c.timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
