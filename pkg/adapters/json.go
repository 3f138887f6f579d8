package adapters

import (
	"database/sql"
	"encoding/json"
	"time"
)

func toNullJSON(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func fromNullJSON(ns sql.NullString, dst any) {
	if !ns.Valid || ns.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(ns.String), dst)
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func strs(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func parseTrendDate(s string) (time.Time, error) {
	t, err := time.Parse(trendDateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
