// Package geo parses free-form location strings into a canonical maps URL and
// a QR code PNG pointing at it. Malformed inputs resolve to not-ok so a bad
// field never aborts a document render.
package geo

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const mapsBase = "https://www.google.com/maps/search/?api=1&query="

// QR code edge size in pixels for the rendered PNG.
const qrSize = 160

var (
	decimalPair = regexp.MustCompile(`^\s*(-?\d{1,3}(?:[.,]\d+)?)\s*[,;]\s*(-?\d{1,3}(?:[.,]\d+)?)\s*$`)
	urlAtPair   = regexp.MustCompile(`@(-?\d{1,3}\.\d+),(-?\d{1,3}\.\d+)`)
	dmsPart     = regexp.MustCompile(`(\d{1,3})[°º]\s*(\d{1,2})['′]\s*(\d{1,2}(?:[.,]\d+)?)["″]?\s*([NSEWOLnsewol])`)
)

// Resolve parses raw and returns the maps URL and a QR code PNG encoding it.
// Recognized forms, tried in order: a URL carrying an "@lat,lng" pair, a
// decimal "lat, lng" pair, a DMS pair with hemisphere letters, and finally a
// plain-text address turned into a search query. Empty input is not ok.
func Resolve(raw string) (mapsURL string, qr []byte, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, false
	}

	if lat, lng, found := parseURLPair(raw); found {
		return finish(coordQuery(lat, lng))
	}
	if lat, lng, found := parseDecimalPair(raw); found {
		return finish(coordQuery(lat, lng))
	}
	if lat, lng, found := parseDMSPair(raw); found {
		return finish(coordQuery(lat, lng))
	}
	return finish(mapsBase + url.QueryEscape(raw))
}

func finish(mapsURL string) (string, []byte, bool) {
	png, err := qrcode.Encode(mapsURL, qrcode.Medium, qrSize)
	if err != nil {
		return "", nil, false
	}
	return mapsURL, png, true
}

func coordQuery(lat, lng float64) string {
	return mapsBase + url.QueryEscape(fmt.Sprintf("%.6f,%.6f", lat, lng))
}

func parseURLPair(raw string) (lat, lng float64, ok bool) {
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "www.") {
		return 0, 0, false
	}
	m := urlAtPair.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || !validPair(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseDecimalPair(raw string) (lat, lng float64, ok bool) {
	m := decimalPair.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	lng, err2 := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64)
	if err1 != nil || err2 != nil || !validPair(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseDMSPair(raw string) (lat, lng float64, ok bool) {
	ms := dmsPart.FindAllStringSubmatch(raw, -1)
	if len(ms) != 2 {
		return 0, 0, false
	}
	vals := make([]float64, 2)
	hemis := make([]string, 2)
	for i, m := range ms {
		deg, _ := strconv.ParseFloat(m[1], 64)
		min, _ := strconv.ParseFloat(m[2], 64)
		sec, _ := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", "."), 64)
		if min >= 60 || sec >= 60 {
			return 0, 0, false
		}
		v := deg + min/60 + sec/3600
		hemis[i] = strings.ToUpper(m[4])
		// S and W (O in Portuguese) are negative hemispheres.
		if hemis[i] == "S" || hemis[i] == "W" || hemis[i] == "O" {
			v = -v
		}
		vals[i] = v
	}
	latIdx, lngIdx := 0, 1
	if hemis[0] == "E" || hemis[0] == "W" || hemis[0] == "O" || hemis[0] == "L" {
		latIdx, lngIdx = 1, 0
	}
	lat, lng = vals[latIdx], vals[lngIdx]
	if !validPair(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

func validPair(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
