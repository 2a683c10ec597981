package place

import (
	"github.com/hauke96/sigolo/v2"
	"math"
)

const dedupeDecimals = 6

type dedupeKey struct {
	name string
	lat  float64
	lon  float64
}

func keyOf(record Record) dedupeKey {
	return dedupeKey{
		name: record.PlaceName,
		lat:  roundTo(record.Latitude, dedupeDecimals),
		lon:  roundTo(record.Longitude, dedupeDecimals),
	}
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// Dedupe removes records with the same name and the same position rounded to six decimals. The first occurrence is
// kept and the order of the remaining records is preserved.
func Dedupe(records []Record) []Record {
	seen := map[dedupeKey]bool{}
	result := make([]Record, 0, len(records))

	for _, record := range records {
		key := keyOf(record)
		if seen[key] {
			sigolo.Tracef("Drop duplicate record %s at (%f, %f)", record.PlaceName, record.Latitude, record.Longitude)
			continue
		}
		seen[key] = true
		result = append(result, record)
	}

	if len(result) != len(records) {
		sigolo.Debugf("Removed %d duplicate records", len(records)-len(result))
	}

	return result
}
