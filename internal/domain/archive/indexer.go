package archive

import (
	"fmt"
	"sort"
	"time"
)

// entityFields maps each searchable dimension to the row fields it may live
// under, tried in order.
var entityFields = map[string][]string{
	EntityUser:     {"user_id", "user", "client_id"},
	EntityEndpoint: {"endpoint", "path", "url"},
	EntityAction:   {"action", "method", "event"},
	EntityIP:       {"ip_address", "ip", "remote_addr"},
	EntityStatus:   {"status", "status_code"},
}

// entityTypes fixes emission order so BuildIndex output is deterministic.
var entityTypes = []string{EntityUser, EntityEndpoint, EntityAction, EntityIP, EntityStatus}

// BuildIndex aggregates entity occurrences across exported rows. Pure
// function: no I/O, so it is testable without a database. Rows lacking a
// dimension simply don't contribute to it; rows lacking a timestamp count
// as "now".
func BuildIndex(archiveUUID string, rows []map[string]any) []IndexEntry {
	type key struct {
		entityType  string
		entityValue string
	}
	aggregates := map[key]*IndexEntry{}

	now := time.Now().UTC()
	for _, row := range rows {
		ts, ok := RecordTime(row)
		if !ok {
			ts = now
		}
		for _, entityType := range entityTypes {
			value, ok := extractEntity(row, entityFields[entityType])
			if !ok {
				continue
			}
			k := key{entityType: entityType, entityValue: value}
			agg, ok := aggregates[k]
			if !ok {
				aggregates[k] = &IndexEntry{
					ArchiveUUID:     archiveUUID,
					EntityType:      entityType,
					EntityValue:     value,
					RecordCount:     1,
					FirstOccurrence: ts,
					LastOccurrence:  ts,
				}
				continue
			}
			agg.RecordCount++
			if ts.Before(agg.FirstOccurrence) {
				agg.FirstOccurrence = ts
			}
			if ts.After(agg.LastOccurrence) {
				agg.LastOccurrence = ts
			}
		}
	}

	entries := make([]IndexEntry, 0, len(aggregates))
	for _, agg := range aggregates {
		entries = append(entries, *agg)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EntityType != entries[j].EntityType {
			return entries[i].EntityType < entries[j].EntityType
		}
		return entries[i].EntityValue < entries[j].EntityValue
	})
	return entries
}

func extractEntity(row map[string]any, fields []string) (string, bool) {
	for _, field := range fields {
		raw, ok := row[field]
		if !ok || raw == nil {
			continue
		}
		value := fmt.Sprintf("%v", raw)
		if value != "" {
			return value, true
		}
	}
	return "", false
}
