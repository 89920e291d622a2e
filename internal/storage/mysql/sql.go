package mysql

const upsertPlaceSQL = `
INSERT INTO places
  (id, name, city, country, address, lat, lon, photos, types, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name       = VALUES(name),
  city       = VALUES(city),
  country    = VALUES(country),
  address    = VALUES(address),
  lat        = VALUES(lat),
  lon        = VALUES(lon),
  photos     = VALUES(photos),
  types      = VALUES(types),
  raw        = VALUES(raw),
  updated_at = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO ingest_misses (id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Placeholders for the IN list are appended by the repo.
const getPlacesPrefixSQL = `
SELECT
  id,
  name,
  city,
  country,
  address,
  lat,
  lon,
  photos,
  types
FROM places
WHERE id IN (`
