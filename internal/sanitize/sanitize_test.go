package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringStripsAngleBrackets(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", String("<script>alert(1)</script>", 0))
	assert.Equal(t, "hello", String("  hello  ", 0))
}

func TestStringStripsJavascriptProtocol(t *testing.T) {
	assert.Equal(t, "alert(1)", String("JavaScript:alert(1)", 0))
	// Overlapping fragments must not reassemble into a match
	assert.Equal(t, "alert(1)", String("javajavascript:script:alert(1)", 0))
}

func TestStringStripsEventHandlers(t *testing.T) {
	assert.Equal(t, `img src=x "1"`, String(`<img src=x onerror="1">`, 0))
	assert.Equal(t, "x", String("onclick= x", 0))
}

func TestStringTruncates(t *testing.T) {
	long := strings.Repeat("a", DefaultMaxLen+100)
	assert.Len(t, String(long, 0), DefaultMaxLen)
	assert.Len(t, String(long, 10), 10)
}

func TestCleanNestedStructures(t *testing.T) {
	input := map[string]interface{}{
		"name": "  <b>Jo</b>  ",
		"tags": []interface{}{"<x>", "ok", map[string]interface{}{"deep": "javascript:evil"}},
		"num":  float64(42),
		"flag": true,
	}

	cleaned, ok := Clean(input).(map[string]interface{})
	require.True(t, ok)

	assert.Equal(t, "bJo/b", cleaned["name"])
	assert.Equal(t, float64(42), cleaned["num"])
	assert.Equal(t, true, cleaned["flag"])

	tags, ok := cleaned["tags"].([]interface{})
	require.True(t, ok)
	require.Len(t, tags, 3)
	assert.Equal(t, "x", tags[0])
	assert.Equal(t, "ok", tags[1])

	deep, ok := tags[2].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "evil", deep["deep"])
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []interface{}{
		"<script>javascript:alert(1)</script> onload=x",
		"javajavascript:script:payload",
		[]interface{}{"<a>", "onclick=go", float64(1)},
		map[string]interface{}{
			"a": "<<nested>>",
			"b": []interface{}{map[string]interface{}{"c": "javascript:x"}},
		},
	}

	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		assert.Equal(t, once, twice)
	}
}

func TestCleanLeavesNoForbiddenSubstrings(t *testing.T) {
	nasty := map[string]interface{}{
		"a": "<script>alert('x')</script>",
		"b": "JAVASCRIPT:void(0)",
		"c": []interface{}{"onmouseover=steal()", "jAvAsCrIpT:x"},
	}

	cleaned := Clean(nasty).(map[string]interface{})
	assertNoForbidden(t, cleaned)
}

func assertNoForbidden(t *testing.T, v interface{}) {
	t.Helper()

	switch value := v.(type) {
	case string:
		lowered := strings.ToLower(value)
		assert.NotContains(t, value, "<")
		assert.NotContains(t, value, ">")
		assert.NotContains(t, lowered, "javascript:")
	case []interface{}:
		for _, item := range value {
			assertNoForbidden(t, item)
		}
	case map[string]interface{}:
		for _, item := range value {
			assertNoForbidden(t, item)
		}
	}
}
