package parser

import (
	"strings"

	"github.com/oschwald/maxminddb-golang"

	"github.com/ipfeeds/listgen/src/internal/errors"
)

type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	RegisteredCountry struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"registered_country"`
}

// parseMaxMindCountry walks every network of a GeoLite2/GeoIP2 Country
// database and keeps those located in, or registered to, the requested country.
func parseMaxMindCountry(raw []byte, opts Options, d *Diagnostics) ([]Entry, error) {
	country := strings.TrimSpace(opts[OptionCountry])
	if country == "" {
		return nil, errors.NewParseError("format maxmind-country requires the country option", nil)
	}

	db, err := maxminddb.FromBytes(raw)
	if err != nil {
		return nil, errors.NewParseError("payload is not a MaxMind database", err)
	}
	defer db.Close()

	var entries []Entry
	networks := db.Networks(maxminddb.SkipAliasedNetworks)
	for networks.Next() {
		var rec countryRecord
		network, err := networks.Network(&rec)
		if err != nil {
			d.Record(ReasonBadRecord, 0, "", err)
			continue
		}

		iso := rec.Country.ISOCode
		if iso == "" {
			iso = rec.RegisteredCountry.ISOCode
		}
		if !strings.EqualFold(iso, country) {
			continue
		}

		entries = append(entries, Entry{Value: network.String()})
	}
	if err := networks.Err(); err != nil {
		return nil, errors.NewParseError("failed to traverse MaxMind database", err)
	}

	return entries, nil
}
