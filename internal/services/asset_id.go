package services

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
)

const assetIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var cityCodes = map[string]string{
	"MUMBAI":    "MUM",
	"DELHI":     "DEL",
	"BANGALORE": "BLR",
	"HYDERABAD": "HYD",
	"CHENNAI":   "CHN",
	"KOLKATA":   "CCU",
	"PUNE":      "PUN",
	"JAIPUR":    "JAI",
}

// CityCode maps a location to its three letter code.
func CityCode(location string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(location) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if code, ok := cityCodes[cleaned]; ok {
		return code
	}
	if len(cleaned) >= 3 {
		return cleaned[:3]
	}
	return "LOC"
}

// GenerateAssetID returns an identifier of the form CITY-MMYY-XXXXXX-C where
// XXXXXX is drawn from an unambiguous base32 alphabet and C is a checksum
// letter. Placeholder assets get a T suffix on the city code. A nil entropy
// source uses crypto/rand.
func GenerateAssetID(location string, at time.Time, placeholder bool, entropy io.Reader) (string, error) {
	if entropy == nil {
		entropy = rand.Reader
	}

	city := CityCode(location)
	if placeholder {
		city += "T"
	}

	raw := make([]byte, 6)
	if _, err := io.ReadFull(entropy, raw); err != nil {
		return "", fmt.Errorf("generate asset id: %w", err)
	}
	unique := make([]byte, len(raw))
	for i, b := range raw {
		unique[i] = assetIDAlphabet[int(b)%len(assetIDAlphabet)]
	}

	base := fmt.Sprintf("%s-%02d%02d-%s", city, int(at.Month()), at.Year()%100, unique)
	return base + "-" + string(AssetIDChecksum(base)), nil
}

// AssetIDChecksum computes the checksum letter over the non-hyphen characters of base.
func AssetIDChecksum(base string) byte {
	sum := 0
	for i := 0; i < len(base); i++ {
		if base[i] != '-' {
			sum += int(base[i])
		}
	}
	return byte('A' + sum%26)
}

// ValidAssetID reports whether id carries a correct checksum.
func ValidAssetID(id string) bool {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 || idx != len(id)-2 {
		return false
	}
	return AssetIDChecksum(id[:idx]) == id[idx+1]
}
