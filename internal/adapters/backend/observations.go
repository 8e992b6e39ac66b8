package backend

import (
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/obs"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type pageData struct {
	Observations []wireObservation `json:"observations"`
	CurrentPage  int               `json:"current_page"`
	LastPage     int               `json:"last_page"`
}

// FetchPage returns one page of the table feed.
func (c *Client) FetchPage(
	ctx context.Context,
	userID string,
	page int,
	criteria domain.FilterCriteria,
) (_ domain.ObservationPage, err error) {
	defer obs.Time(ctx, "backend.FetchPage")(&err)

	if strings.TrimSpace(userID) == "" {
		return domain.ObservationPage{}, errors.New("fetch page: user id is empty")
	}
	if page < 1 {
		return domain.ObservationPage{}, fmt.Errorf("fetch page: invalid page %d", page)
	}

	searchType := criteria.SearchType
	if searchType == "" {
		searchType = domain.SearchAll
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("search", criteria.Query)
	q.Set("search_type", string(searchType))
	if criteria.Date != "" {
		q.Set("date", criteria.Date)
	}

	data, err := get[pageData](ctx, c, "/profile/observations/"+url.PathEscape(userID), q)
	if err != nil {
		return domain.ObservationPage{}, fmt.Errorf("fetch page %d: %w", page, err)
	}

	return domain.ObservationPage{
		Observations: toDomain(data.Observations),
		CurrentPage:  data.CurrentPage,
		LastPage:     data.LastPage,
	}, nil
}

// FetchAll returns the full unpaginated map dataset.
func (c *Client) FetchAll(ctx context.Context, userID string) (_ []domain.Observation, err error) {
	defer obs.Time(ctx, "backend.FetchAll")(&err)

	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("fetch map dataset: user id is empty")
	}

	q := url.Values{}
	q.Set("map", "true")

	data, err := get[[]wireObservation](ctx, c, "/profile/observations/"+url.PathEscape(userID), q)
	if err != nil {
		return nil, fmt.Errorf("fetch map dataset: %w", err)
	}

	return toDomain(data), nil
}

// wireObservation accepts the field aliases the three providers use.
type wireObservation struct {
	ID              flexString `json:"id"`
	Source          string     `json:"source"`
	Latitude        flexFloat  `json:"latitude"`
	Longitude       flexFloat  `json:"longitude"`
	NamaLatin       string     `json:"nama_latin"`
	ScientificName  string     `json:"scientific_name"`
	NameLat         string     `json:"nameLat"`
	NamaUmum        string     `json:"nama_umum"`
	CommonName      string     `json:"common_name"`
	NameID          string     `json:"nameId"`
	CnameSpecies    string     `json:"cname_species"`
	Location        string     `json:"location"`
	ObservationDate string     `json:"observation_date"`
	CreatedAt       string     `json:"created_at"`
	PhotoURL        string     `json:"photo_url"`
	Family          string     `json:"family"`
}

func toDomain(in []wireObservation) []domain.Observation {
	out := make([]domain.Observation, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Observation{
			ID:             string(w.ID),
			Source:         domain.Source(w.Source),
			Lat:            w.Latitude.ptr(),
			Lon:            w.Longitude.ptr(),
			ScientificName: firstNonEmpty(w.NamaLatin, w.ScientificName, w.NameLat),
			CommonName:     firstNonEmpty(w.NamaUmum, w.CommonName, w.NameID, w.CnameSpecies),
			Location:       w.Location,
			ObservedAt:     firstNonEmpty(w.ObservationDate, w.CreatedAt),
			PhotoURL:       w.PhotoURL,
			Family:         w.Family,
		})
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// flexFloat decodes a number, a numeric string, or null.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Malformed coordinates are treated as absent.
			*f = flexFloat{}
			return nil
		}
		*f = flexFloat{v: v, ok: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexFloat{v: v, ok: true}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.ok {
		return nil
	}
	v := f.v
	return &v
}

// flexString decodes a string or a number into its textual form.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}
