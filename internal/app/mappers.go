package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"spotrank/internal/domain"
)

/********** alias registry **********/

var placeAliases = map[string][]string{
	"id":      {"place_id", "id", "result.place_id"},
	"name":    {"name", "displayName.text", "result.name"},
	"address": {"formatted_address", "formattedAddress", "vicinity", "result.formatted_address"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {photo_reference/name/url}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, f := range []string{"photo_reference", "name", "url"} {
					if u, ok := t[f].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// addressComponent returns the long_name of the first component tagged with typ.
func addressComponent(m map[string]any, typ string) *string {
	for _, path := range []string{"address_components", "result.address_components"} {
		comps, ok := lookupAny(m, path).([]any)
		if !ok {
			continue
		}
		for _, c := range comps {
			obj, ok := c.(map[string]any)
			if !ok {
				continue
			}
			types, _ := obj["types"].([]any)
			for _, t := range types {
				if s, _ := t.(string); s == typ {
					if name := strings.TrimSpace(lookupStr(obj, "long_name")); name != "" {
						return &name
					}
				}
			}
		}
	}
	return nil
}

/********** place mapper **********/

func mapPlace(placeID string, p map[string]any) domain.Place {
	id := placeID
	if s := firstNonEmptyAlias(p, placeAliases, "id"); id == "" && s != nil {
		id = *s
	}

	raw, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).
			Str("context", "mapPlace").
			Msg("failed to marshal place to JSON")
	}

	city := addressComponent(p, "locality")
	if city == nil {
		city = addressComponent(p, "postal_town")
	}

	return domain.Place{
		ID:      id,
		Name:    firstNonEmptyAlias(p, placeAliases, "name"),
		City:    city,
		Country: addressComponent(p, "country"),
		Address: firstNonEmptyAlias(p, placeAliases, "address"),
		Lat:     getFloatFlexible(p, "geometry.location.lat", "location.latitude", "result.geometry.location.lat"),
		Lon:     getFloatFlexible(p, "geometry.location.lng", "location.longitude", "result.geometry.location.lng"),
		Photos:  firstSliceStrings(p, "photos", "result.photos"),
		Types:   firstSliceStrings(p, "types", "result.types"),
		RawJSON: raw,
	}
}
