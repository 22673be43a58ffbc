package domain

import (
	"fmt"
	"strings"
)

type MetricKey string

const (
	MetricRevenue    MetricKey = "revenue"
	MetricUsers      MetricKey = "users"
	MetricConversion MetricKey = "conversion"
	MetricTraffic    MetricKey = "traffic"
	MetricProducts   MetricKey = "products"
)

// MetricCatalog returns the fixed metric catalog. Its order is the order in
// which selected metrics are enumerated everywhere.
func MetricCatalog() []MetricKey {
	return []MetricKey{MetricRevenue, MetricUsers, MetricConversion, MetricTraffic, MetricProducts}
}

func IsValidMetricKey(s string) bool {
	switch MetricKey(s) {
	case MetricRevenue, MetricUsers, MetricConversion, MetricTraffic, MetricProducts:
		return true
	default:
		return false
	}
}

func ParseMetricKey(s string) (MetricKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if !IsValidMetricKey(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
	return MetricKey(normalized), nil
}

// ParseMetricList parses a comma separated list such as "revenue,users".
func ParseMetricList(s string) ([]MetricKey, error) {
	var keys []MetricKey
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, err := ParseMetricKey(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Title returns the key with its first letter upper-cased ("users" -> "Users").
func (m MetricKey) Title() string {
	if m == "" {
		return ""
	}
	s := string(m)
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m MetricKey) Label() string {
	switch m {
	case MetricRevenue:
		return "Revenue"
	case MetricUsers:
		return "Active Users"
	case MetricConversion:
		return "Conversion Rate"
	case MetricTraffic:
		return "Website Traffic"
	case MetricProducts:
		return "Products Sold"
	default:
		return m.Title()
	}
}
