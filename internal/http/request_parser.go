package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// nullable tracks JSON field presence for partial updates: an absent key
// leaves Set false, an explicit null sets Set with Valid false.
type nullable[T any] struct {
	core.Optional[T]
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Valid = true
	n.Value = v
	return nil
}

// apiDate is a request-body timestamp accepting the same formats as the
// query parameters: RFC 3339 or a plain 2006-01-02 date.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: invalid date", core.ErrValidation)
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// decodeJSON reads the body into dst; malformed payloads surface as
// validation errors.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", core.ErrValidation, err)
	}
	return nil
}

// parseDate accepts RFC 3339 timestamps and plain dates. Plain dates pin to
// midnight UTC.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrValidation, value)
}

// parseTransactionFilter reads the list query parameters shared by the list
// and totals endpoints.
func parseTransactionFilter(query url.Values) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter

	if v := strings.TrimSpace(query.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.Valid() {
			return f, core.ErrInvalidType
		}
		f.Type = &typ
	}
	f.CategoryID = strings.TrimSpace(query.Get("categoryId"))
	f.Search = strings.TrimSpace(query.Get("search"))

	if v := strings.TrimSpace(query.Get("startDate")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if v := strings.TrimSpace(query.Get("endDate")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return f, fmt.Errorf("%w: invalid limit %q", core.ErrValidation, v)
		}
		f.Limit = limit
	}
	return f, nil
}

// parsePeriod reads year/month query parameters, defaulting to the current
// UTC month.
func parsePeriod(query url.Values) (year, month int, err error) {
	now := time.Now().UTC()
	year, month = now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid year %q", core.ErrValidation, v)
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid month %q", core.ErrValidation, v)
		}
	}
	if !core.ValidPeriod(year, month) {
		return 0, 0, core.ErrInvalidPeriod
	}
	return year, month, nil
}

// parsePositiveInt reads an optional positive integer query parameter,
// returning fallback when absent.
func parsePositiveInt(query url.Values, key string, fallback int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: invalid %s %q", core.ErrValidation, key, v)
	}
	return n, nil
}
