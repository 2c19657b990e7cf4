package app

import (
	"net/url"
	"strings"
)

// dsnOptions are lib/pq connection parameters applied on top of DB_URL.
// Values already present in the DSN win.
type dsnOptions struct {
	BinaryParameters bool
	ApplicationName  string
}

func (o dsnOptions) params() [][2]string {
	out := make([][2]string, 0, 2)
	if o.BinaryParameters {
		out = append(out, [2]string{"binary_parameters", "yes"})
	}
	if name := strings.TrimSpace(o.ApplicationName); name != "" {
		out = append(out, [2]string{"application_name", name})
	}
	return out
}

// applyDSNOptions accepts both URL and key=value DSNs.
func applyDSNOptions(raw string, opts dsnOptions) string {
	raw = strings.TrimSpace(raw)
	params := opts.params()
	if raw == "" || len(params) == 0 {
		return raw
	}

	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		for _, kv := range params {
			if query.Get(kv[0]) == "" {
				query.Set(kv[0], kv[1])
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	for _, kv := range params {
		if dsnHasKey(raw, kv[0]) {
			continue
		}
		raw += " " + kv[0] + "='" + strings.ReplaceAll(kv[1], "'", `\'`) + "'"
	}
	return raw
}

func dsnHasKey(dsn, key string) bool {
	for _, token := range strings.Fields(dsn) {
		if strings.HasPrefix(token, key+"=") {
			return true
		}
	}
	return false
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		name, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		if name = strings.Trim(name, `"'`); name != "" {
			return name
		}
	}
	return ""
}
