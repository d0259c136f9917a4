package tui

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"shiftmap-cli/internal/doc"
)

func writeEdited(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edited.txt")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestApplyExternalEditorResult_SetsValueAndCleansUp(t *testing.T) {
	m := newTestModel(t, `{}`, `{"note": "old"}`)
	row := m.dst.ed.Rows()[0]
	path := writeEdited(t, "a longer\nnote\n")

	m.extEdit = &externalEdit{pane: m.dst, row: row, path: path, before: "old"}
	m = update(m, externalEditorDoneMsg{})

	if got := m.sess.Dest.Value(); !reflect.DeepEqual(got, doc.Object{{Key: "note", Value: "a longer\nnote"}}) {
		t.Fatalf("unexpected destination %#v", got)
	}
	if m.extEdit != nil {
		t.Fatalf("expected the edit to be cleared")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be removed, stat err=%v", err)
	}
}

func TestApplyExternalEditorResult_NoChanges(t *testing.T) {
	m := newTestModel(t, `{}`, `{"n": 42}`)
	row := m.dst.ed.Rows()[0]
	path := writeEdited(t, "42\n")

	m.extEdit = &externalEdit{pane: m.dst, row: row, path: path, before: "42"}
	m = update(m, externalEditorDoneMsg{})

	if m.status != "no changes from "+externalEditorName() {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestOpenExternalEditor_RejectsContainers(t *testing.T) {
	m := newTestModel(t, `{}`, `{"address": {"street": null}}`)
	row := m.dst.ed.Rows()[0]
	if _, err := m.openExternalEditor(m.dst, row); err == nil {
		t.Fatalf("expected an object row to be rejected")
	}
	if m.extEdit != nil {
		t.Fatalf("expected no pending edit")
	}
}
