package services

import (
	"biodiversity-map-service/internal/domain"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies an observation set by its members' content,
// ignoring order. Any change to a member's position or names changes it.
func Fingerprint(observations []domain.Observation) string {
	rows := make([]string, 0, len(observations))
	for _, o := range observations {
		rows = append(rows, fingerprintRow(o))
	}
	sort.Strings(rows)

	d := xxhash.New()
	for _, r := range rows {
		_, _ = d.WriteString(r)
		_, _ = d.WriteString("\x1e")
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func fingerprintRow(o domain.Observation) string {
	coord := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return strconv.FormatFloat(*p, 'g', -1, 64)
	}
	return strings.Join([]string{
		string(o.Source), o.ID,
		coord(o.Lat), coord(o.Lon),
		o.ScientificName, o.CommonName, o.Location, o.ObservedAt,
		o.PhotoURL, o.Family,
	}, "\x1f")
}
