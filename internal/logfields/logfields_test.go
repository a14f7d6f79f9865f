package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Category", KeyCategory, "lifecycle_validation", Category("lifecycle_validation")},
		{"Kind", KeyKind, "decrypt", Kind("decrypt")},
		{"Fragment", KeyFragment, "ruby.friendlyName", Fragment("ruby.friendlyName")},
		{"DocURL", KeyDocURL, "https://example.com", DocURL("https://example.com")},
		{"Topic", KeyTopic, "lifecycles-spec", Topic("lifecycles-spec")},
		{"File", KeyFile, "lifecycles.yaml", File("lifecycles.yaml")},
		{"Language", KeyLanguage, "ruby", Language("ruby")},
		{"Tool", KeyTool, "jdk", Tool("jdk")},
		{"Command", KeyCommand, "validate lifecycles", Command("validate lifecycles")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestDurationMS(t *testing.T) {
	if v := DurationMS(12.5); v.Key != KeyDurationMS || v.Value.Float64() != 12.5 {
		t.Fatalf("DurationMS mismatch: %v", v)
	}
}

// TestErrorHelpers ensures Error() and Cause() handle nil and non-nil errors predictably.
func TestErrorHelpers(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
	if c := Cause(errTest{}); c.Key != KeyCause || c.Value.String() != "err-test" {
		t.Fatalf("Cause mismatch: %v", c)
	}
	if c := Cause(nil); c.Value.String() != "" {
		t.Fatalf("Expected empty cause, got %s", c.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
