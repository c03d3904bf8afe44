// Request parsing helpers shared by the procedure handlers. Query
// procedures read URL parameters (dates as RFC 3339); mutations read a
// JSON body decoded into a typed request struct. Unknown JSON fields
// are ignored so old clients keep working.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes the JSON request body into dst. Numbers are kept
// as json.Number so decimal amounts survive verbatim until conversion.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return core.NewValidationError("", "request body is not valid JSON")
	}
	// A second value means trailing garbage after the JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.NewValidationError("", "request body is not valid JSON")
	}
	return nil
}

// amountToCents converts a positive decimal amount to cents, rounding
// to the nearest cent. Exact decimal strings convert losslessly;
// anything else (scientific notation) goes through float conversion.
func amountToCents(n json.Number) (int64, error) {
	if n == "" {
		return 0, core.NewValidationError("amount", "amount is required")
	}
	if cents, err := core.ParseDecimalToCents(n.String()); err == nil {
		return cents, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, core.NewValidationError("amount", "amount is not a valid number")
	}
	return core.CentsFromMajor(f)
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, core.NewValidationError(key, key+" must be an integer")
	}
	return &v, nil
}

// queryInt parses an optional int query parameter.
func queryInt(q url.Values, key string) (*int, error) {
	v64, err := queryInt64(q, key)
	if err != nil || v64 == nil {
		return nil, err
	}
	v := int(*v64)
	return &v, nil
}

// queryTime parses an optional RFC 3339 query parameter.
func queryTime(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, core.NewValidationError(key, key+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// queryKind parses an optional transaction kind query parameter.
func queryKind(q url.Values, key string) (*core.TransactionKind, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	k := core.TransactionKind(raw)
	if !core.ValidKind(k) {
		return nil, core.NewValidationError(key, key+" must be income or expense")
	}
	return &k, nil
}

// requireKind parses a mandatory transaction kind query parameter.
func requireKind(q url.Values, key string) (core.TransactionKind, error) {
	k, err := queryKind(q, key)
	if err != nil {
		return "", err
	}
	if k == nil {
		return "", core.NewValidationError(key, key+" is required")
	}
	return *k, nil
}

// dateWindow reads the optional startDate/endDate pair.
func dateWindow(q url.Values) (core.DateWindow, error) {
	start, err := queryTime(q, "startDate")
	if err != nil {
		return core.DateWindow{}, err
	}
	end, err := queryTime(q, "endDate")
	if err != nil {
		return core.DateWindow{}, err
	}
	return core.DateWindow{Start: start, End: end}, nil
}

// requireID reads the mandatory positive id field of a mutation body.
func requireID(id *int64) (int64, error) {
	if id == nil || *id <= 0 {
		return 0, core.NewValidationError("id", "id is required")
	}
	return *id, nil
}
