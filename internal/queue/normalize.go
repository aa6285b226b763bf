package queue

import (
	"regexp"
	"strings"

	"github.com/UnknownOlympus/cartographer/internal/models"
)

var birthPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// InputRow is one row of an upload as submitted by the client.
type InputRow struct {
	Address string `json:"address"`
	Birth   string `json:"birth,omitempty"`
	Sex     string `json:"sex,omitempty"`
}

// Normalize trims and validates rows, keeping their order. Rows whose address is
// empty after trimming are dropped; malformed birth or sex values become absent.
func Normalize(rows []InputRow) []models.Row {
	normalized := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		address := strings.TrimSpace(row.Address)
		if address == "" {
			continue
		}

		normalized = append(normalized, models.Row{
			Address: address,
			Birth:   NormalizeBirth(row.Birth),
			Sex:     NormalizeSex(row.Sex),
		})
	}

	return normalized
}

// NormalizeBirth returns the trimmed value when it looks like YYYY-MM-DD, nil otherwise.
func NormalizeBirth(value string) *string {
	trimmed := strings.TrimSpace(value)
	if !birthPattern.MatchString(trimmed) {
		return nil
	}

	return &trimmed
}

// NormalizeSex maps male/m and female/f, case-insensitively, and nil for anything else.
func NormalizeSex(value string) *models.Sex {
	var sex models.Sex
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		sex = models.SexMale
	case "female", "f":
		sex = models.SexFemale
	default:
		return nil
	}

	return &sex
}
