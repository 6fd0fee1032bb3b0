package backup

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/domain"
)

// Encode renders snap as an opaque text blob. The same snapshot always
// encodes to the same blob.
func Encode(snap domain.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a blob produced by Encode. Blobs written by the older flat
// format, an object keyed by storage key, are accepted too. The result is
// validated; every failure wraps ErrDecode.
func Decode(blob string) (domain.Snapshot, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, ok := top["categories"]; ok {
		return DecodeJSON(data)
	}

	snap, err := decodeFlat(top)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return snap, nil
}

// DecodeJSON parses a snapshot document as written by the JSON export.
// Unknown fields and a missing "categories" object are rejected so a stray
// file can never be mistaken for an empty snapshot.
func DecodeJSON(data []byte) (domain.Snapshot, error) {
	var shape struct {
		Categories json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(shape.Categories) == 0 || string(shape.Categories) == "null" {
		return domain.Snapshot{}, fmt.Errorf("%w: missing categories", ErrDecode)
	}

	var snap domain.Snapshot
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if snap.Categories == nil {
		snap.Categories = map[domain.Category]domain.CategorySnapshot{}
	}
	if err := snap.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return snap, nil
}

// flatIgnoredKeys are written by the older format but have no place in a
// snapshot. Island interactions only ever fed the game form.
var flatIgnoredKeys = map[string]bool{
	"islandInteractions":      true,
	"islandInteractions_TEMP": true,
}

// decodeFlat maps storage keys onto categories: "<name>Data" holds the
// archive and "<name>Data_TEMP" the pending log.
func decodeFlat(top map[string]json.RawMessage) (domain.Snapshot, error) {
	archivedKeys := make(map[string]domain.Category)
	pendingKeys := make(map[string]domain.Category)
	for _, c := range domain.Categories() {
		archivedKeys[c.ArchivedKey()] = c
		pendingKeys[c.PendingKey()] = c
	}

	snap := domain.Snapshot{Categories: map[domain.Category]domain.CategorySnapshot{}}
	for key, raw := range top {
		if key == domain.ImportantDatesKey {
			if err := json.Unmarshal(raw, &snap.ImportantDates); err != nil {
				return domain.Snapshot{}, fmt.Errorf("%s: %v", key, err)
			}
			continue
		}
		if flatIgnoredKeys[key] {
			continue
		}

		c, archived := archivedKeys[key]
		if !archived {
			var pending bool
			if c, pending = pendingKeys[key]; !pending {
				return domain.Snapshot{}, fmt.Errorf("%w: storage key %q", domain.ErrUnknownCategory, key)
			}
		}
		log, err := decodeFlatLog(raw)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%s: %v", key, err)
		}
		cs := snap.Categories[c]
		if archived {
			cs.Archived = log
		} else {
			cs.Pending = log
		}
		snap.Categories[c] = cs
	}
	return snap, nil
}

// decodeFlatLog accepts both a list of records per day and a single record
// object per day, as the older finance entries were stored.
func decodeFlatLog(raw json.RawMessage) (domain.CategoryLog, error) {
	var days map[domain.DateBucket]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, err
	}
	log := make(domain.CategoryLog, len(days))
	for day, v := range days {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '{' {
			var r domain.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return nil, fmt.Errorf("%s: %v", day, err)
			}
			log[day] = []domain.Record{r}
			continue
		}
		var recs []domain.Record
		if err := json.Unmarshal(v, &recs); err != nil {
			return nil, fmt.Errorf("%s: %v", day, err)
		}
		log[day] = recs
	}
	return log, nil
}
