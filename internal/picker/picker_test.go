package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
)

func testResults() []search.SearchResult {
	return []search.SearchResult{
		{Bookmark: model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}},
		{Bookmark: model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(p Picker, msgs ...tea.KeyMsg) (Picker, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = p.Update(msg)
		p = m.(Picker)
	}
	return p, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_InitialState(t *testing.T) {
	p := New(testResults(), "git", model.ThemeLight)

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_Navigate(t *testing.T) {
	p := New(testResults(), "git", model.ThemeLight)

	p, _ = press(p, runes("j"))
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after j, got %d", p.cursor)
	}

	p, _ = press(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after k, got %d", p.cursor)
	}

	p, _ = press(p, tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}

	p, _ = press(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}

func TestPicker_BoundsCheck(t *testing.T) {
	p := New(testResults()[:1], "git", model.ThemeLight)

	p, _ = press(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}

	p, _ = press(p, runes("j"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 (only 1 item), got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(testResults(), "git", model.ThemeDark)

	p, cmd := press(p, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	b, ok := p.SelectedBookmark()
	if !ok {
		t.Fatal("expected a selection")
	}
	if b.ID != "b2" {
		t.Errorf("expected b2, got %s", b.ID)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		p := New(testResults(), "git", model.ThemeLight)

		p, cmd := press(p, msg)

		if !p.Cancelled() {
			t.Errorf("%s: expected cancelled", msg)
		}
		if cmd == nil {
			t.Errorf("%s: expected quit command after cancel", msg)
		}
		if _, ok := p.SelectedBookmark(); ok {
			t.Errorf("%s: expected no selection when cancelled", msg)
		}
	}
}

func TestPicker_NoSelectionBeforeEnter(t *testing.T) {
	p := New(testResults(), "git", model.ThemeLight)

	if _, ok := p.SelectedBookmark(); ok {
		t.Error("expected no selection before Enter")
	}
}

func TestPicker_View(t *testing.T) {
	p := New(testResults(), "git", model.ThemeLight)
	view := p.View()

	for _, want := range []string{"Open: git (2 results)", "> GitHub", "https://gitlab.com", "Enter: open"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
