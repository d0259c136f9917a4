package format

import (
	"bytes"
	"strings"
	"testing"

	"shiftmap-cli/internal/doc"
)

type row struct {
	QID   string `json:"qid"`
	Level int    `json:"level"`
	Value any    `json:"value"`
}

func TestWrite_JSONKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	v := doc.Object{{Key: "z", Value: 1}, {Key: "a", Value: nil}}
	if err := Write(&buf, v, "json", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"z\":1,\"a\":null}\n" {
		t.Fatalf("unexpected json: %q", got)
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{
		"script": []any{doc.Object{{Key: "operation", Value: "shift"}, {Key: "spec", Value: doc.Object{{Key: "address.street", Value: "name"}}}}},
		"rows":   []row{{QID: "a__b", Level: 1, Value: 2.5}},
	}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:rows [{:qid "a__b" :level 1 :value 2.5}] :script [{:operation "shift" :spec {:address.street "name"}}]}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected edn:\n got %s\nwant %s", got, want)
	}
}

func TestWrite_EDNPrettyAndOddKeys(t *testing.T) {
	var buf bytes.Buffer
	v := doc.Object{{Key: "", Value: true}, {Key: "0", Value: []any{}}, {Key: "a b", Value: doc.Object{}}}
	if err := WriteEDN(&buf, v, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  \"\" true\n  \"0\" []\n  \"a b\" {}\n}\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected edn:\n%q\nwant\n%q", got, want)
	}
}

func TestWrite_EDNScalars(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want string
	}{
		{nil, "nil\n"},
		{"x", "\"x\"\n"},
		{3, "3\n"},
		{false, "false\n"},
	} {
		var buf bytes.Buffer
		if err := WriteEDN(&buf, tc.in, false); err != nil {
			t.Fatalf("write %v: %v", tc.in, err)
		}
		if buf.String() != tc.want {
			t.Fatalf("edn %v: got %q want %q", tc.in, buf.String(), tc.want)
		}
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	v := doc.Object{{Key: "z", Value: "1"}, {Key: "a", Value: doc.Object{{Key: "k", Value: nil}}}}
	if err := Write(&buf, v, "yaml", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "z: \"1\"\na:\n  k: null\n" {
		t.Fatalf("unexpected yaml: %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, 1, "xml", false)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
	if Valid("xml") || !Valid("yaml") {
		t.Fatalf("Valid mismatch")
	}
}
