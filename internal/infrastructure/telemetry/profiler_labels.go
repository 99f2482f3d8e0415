package telemetry

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/grafana/pyroscope-go"
)

// Pyroscope label keys set per HTTP request.
const (
	ProfilingLabelArea   = "area"
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
)

// MaxLabelValueLength truncates long label values.
const MaxLabelValueLength = 128

// unboundedLabels would create one profile series per shopper or request.
var unboundedLabels = []string{"user_id", "request_id", "product_id", "order_id", "trace_id", "span_id"}

// WithProfilingLabels runs fn with the labels attached to its goroutine.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// labelPairs flattens labels into key/value pairs ordered by key. Empty,
// unbounded and unrepresentable entries are dropped.
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var pairs []string
	for _, k := range keys {
		v := labels[k]
		key := labelKey(k)
		if key == "" || v == "" || slices.Contains(unboundedLabels, key) {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, key, v)
	}
	return pairs
}

// labelKey lowercases k, turns spaces and dashes into underscores and drops
// everything else that is not a letter or digit.
func labelKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-' || r == '_':
			return '_'
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		}
		return -1
	}, k)
}

// HTTPRequestLabels builds the labels of one API request, skipping blanks.
func HTTPRequestLabels(area, route, method string) map[string]string {
	labels := make(map[string]string, 3)
	for k, v := range map[string]string{
		ProfilingLabelArea:   area,
		ProfilingLabelRoute:  route,
		ProfilingLabelMethod: method,
	} {
		if v != "" {
			labels[k] = v
		}
	}
	return labels
}
