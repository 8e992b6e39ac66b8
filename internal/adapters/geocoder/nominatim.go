package geocoder

import (
	"biodiversity-map-service/internal/adapters/httpclient"
	"biodiversity-map-service/internal/domain"
	"biodiversity-map-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type reverseResponse struct {
	Address Address `json:"address"`
	Error   string  `json:"error"`
}

// Address is the subset of Nominatim address details used for place names.
type Address struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Municipality string `json:"municipality"`
	County       string `json:"county"`
	Regency      string `json:"regency"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// NominatimGeocoder implements ports.ReverseGeocoder using the
// OpenStreetMap Nominatim /reverse endpoint.
type NominatimGeocoder struct {
	http    *httpclient.Client
	baseURL string
}

func NewNominatimGeocoder(baseURL string, hc *httpclient.Client) (*NominatimGeocoder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("nominatim base url is empty")
	}
	if hc == nil {
		hc = httpclient.New(httpclient.WithUserAgent("FOBI/1.0"))
	}
	return &NominatimGeocoder{http: hc, baseURL: baseURL}, nil
}

// Reverse resolves lat/lon to "city, county, state, country", omitting
// absent parts. An empty address yields domain.UnknownLocation. A Nominatim
// error reply, such as a point at sea, is domain.ErrPlaceNotFound.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (_ string, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	var decoded reverseResponse
	if err := g.http.GetJSON(ctx, g.baseURL+"/reverse?"+q.Encode(), &decoded); err != nil {
		return "", fmt.Errorf("reverse geocode %.5f,%.5f: %w", lat, lon, err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("reverse geocode %.5f,%.5f: %w: %s", lat, lon, domain.ErrPlaceNotFound, decoded.Error)
	}

	return PlaceName(decoded.Address), nil
}

// PlaceName joins the populated address parts with ", ".
func PlaceName(a Address) string {
	parts := make([]string, 0, 4)
	if v := firstNonEmpty(a.City, a.Town, a.Municipality); v != "" {
		parts = append(parts, v)
	}
	if v := firstNonEmpty(a.County, a.Regency); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(a.State); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(a.Country); v != "" {
		parts = append(parts, v)
	}

	if len(parts) == 0 {
		return domain.UnknownLocation
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
