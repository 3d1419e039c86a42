// Package tui implements the deckhand scene picker.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deckhand-cli/deckhand/internal/models"
)

// sceneItem is one selectable row: a scene and the script defining it.
type sceneItem struct {
	scene  string
	source string
}

type pickerModel struct {
	deckName  string
	items     []sceneItem
	selected  map[int]struct{}
	cursor    int
	confirmed bool
	styles    Styles
	width     int
	height    int
}

func newPickerModel(deck *models.Deck) pickerModel {
	items := make([]sceneItem, 0, len(deck.Sources))
	for _, src := range deck.Sources {
		for _, scene := range src.Scenes {
			items = append(items, sceneItem{scene: scene, source: src.Path})
		}
	}

	// Everything starts selected; presenting the full deck is the common
	// case and deselection the exception.
	selected := make(map[int]struct{}, len(items))
	for i := range items {
		selected[i] = struct{}{}
	}

	return pickerModel{
		deckName: deck.Name,
		items:    items,
		selected: selected,
		styles:   DefaultStyles(),
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case " ", "space":
			if _, ok := m.selected[m.cursor]; ok {
				delete(m.selected, m.cursor)
			} else {
				m.selected[m.cursor] = struct{}{}
			}
		case "a":
			for i := range m.items {
				m.selected[i] = struct{}{}
			}
		case "n":
			m.selected = make(map[int]struct{})
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Present %s", m.deckName)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(m.styles.Muted.Render("No scenes found in this deck."))
		b.WriteString("\n")
		return b.String()
	}

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}

		check := "[ ]"
		style := m.styles.Text
		if _, ok := m.selected[i]; ok {
			check = "[x]"
			style = m.styles.Selected
		}

		line := fmt.Sprintf("%s%s %s", cursor, check, style.Render(item.scene))
		line += m.styles.Muted.Render("  " + item.source)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("space toggle · a all · n none · enter present · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Scenes returns the selected scene names in deck order.
func (m pickerModel) Scenes() []string {
	scenes := make([]string, 0, len(m.selected))
	for i, item := range m.items {
		if _, ok := m.selected[i]; ok {
			scenes = append(scenes, item.scene)
		}
	}
	return scenes
}

// RunPicker shows the scene picker and returns the chosen scenes in deck
// order. A nil slice means the user quit without confirming.
func RunPicker(deck *models.Deck) ([]string, error) {
	program := tea.NewProgram(newPickerModel(deck), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run scene picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || !m.confirmed {
		return nil, nil
	}
	return m.Scenes(), nil
}
