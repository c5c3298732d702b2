package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/narrative-engine/pkg/content"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/game"
)

type actionKind int

const (
	actionChoice actionKind = iota
	actionDraw
	actionPlay
	actionPinned
)

// action is one selectable entry in the action panel: a compiled choice,
// a deck to draw from, or a card to play.
type action struct {
	kind    actionKind
	index   int // choice index, for actionChoice
	id      string
	label   string
	detail  string
	enabled bool
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	disabledItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")) // dark grey

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	gameOverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs a game in-process.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game *game.Game
	eng  *engine.Engine
	out  *consoleSink

	storyViewport viewport.Model
	metaViewport  viewport.Model

	actions  []action
	selected int

	ready  bool
	width  int
	height int
	status string
	err    error

	showQuitModal bool
}

func NewConsoleUI(g *game.Game, seed string, transcript bool) (ConsoleUI, error) {
	out := newConsoleSink()
	eng := engine.New(out, g, slog.New(slog.DiscardHandler))

	var err error
	if seed != "" {
		err = eng.BeginGame(seed)
	} else {
		err = eng.BeginGame()
	}
	if err != nil {
		return ConsoleUI{}, err
	}
	eng.ExportableState().EnableTranscript = transcript

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		game:          g,
		eng:           eng,
		out:           out,
		storyViewport: storyVp,
		metaViewport:  metaVp,
	}
	m.rebuildActions()
	return m, nil
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		svCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, svCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(svCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeStoryContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.storyViewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case tea.KeyDown:
			if m.selected < len(m.actions)-1 {
				m.selected++
			}
			return m, nil
		case tea.KeyEnter:
			return m.commitSelected(), nil
		}

		switch key := msg.String(); key {
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			i := int(key[0] - '1')
			if i < len(m.actions) {
				m.selected = i
				return m.commitSelected(), nil
			}
			return m, nil
		case "t":
			return m.copyTranscript(), nil
		case "s":
			return m.copySave(), nil
		}
	}

	m.storyViewport, svCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(svCmd, mvCmd)
}

// layout sizes both viewports for the current terminal and action list.
// The action panel grows with the number of actions and steals height from
// the story viewport.
func (m *ConsoleUI) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	actionHeight := len(m.actions) + 3
	if actionHeight < 5 {
		actionHeight = 5
	}
	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - actionHeight - 4
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

// commitSelected applies the selected action to the engine and refreshes
// both panels. Engine calls are synchronous; the next frame shows the
// settled scene.
func (m ConsoleUI) commitSelected() ConsoleUI {
	if m.eng.IsGameOver() {
		m.status = "The game is over. Press Esc to quit."
		return m
	}
	if m.selected < 0 || m.selected >= len(m.actions) {
		return m
	}
	act := m.actions[m.selected]
	if !act.enabled {
		if act.detail != "" {
			m.status = act.detail
		} else {
			m.status = "That option is unavailable."
		}
		return m
	}

	m.status = ""
	var err error
	switch act.kind {
	case actionChoice:
		err = m.eng.Choose(act.index)
	case actionDraw:
		var result engine.DrawResult
		_, result, err = m.eng.DrawCard(act.id)
		switch result {
		case engine.DrawNoSpace:
			m.status = "No space in your hand."
		case engine.DrawNoCard:
			m.status = "No cards available from deck."
		}
	case actionPlay:
		err = m.eng.PlayCard(act.id)
	case actionPinned:
		err = m.eng.PlayPinnedCard(act.id)
	}
	if err != nil {
		if errors.Is(err, engine.ErrInvalidChoice) || errors.Is(err, engine.ErrCannotChoose) || errors.Is(err, engine.ErrNoChoiceCache) {
			m.status = err.Error()
		} else {
			m.err = err
		}
	}

	m.rebuildActions()
	m.layout()
	m.writeStoryContent()
	m.metaViewport.SetContent(m.writeMetadata())
	m.storyViewport.GotoBottom()
	return m
}

// rebuildActions turns the engine's displayed choices, decks, hand and
// pinned cards into one numbered list. Hand scenes show card actions
// instead of plain choices.
func (m *ConsoleUI) rebuildActions() {
	m.actions = nil
	m.selected = 0

	if m.out.GameOver {
		return
	}

	scene, err := m.eng.CurrentScene()
	if err == nil && scene.IsHand {
		for _, deck := range m.out.Decks {
			m.actions = append(m.actions, action{
				kind:    actionDraw,
				id:      deck.ID,
				label:   "Draw: " + content.Text(deck.Title),
				detail:  content.Text(deck.Subtitle),
				enabled: deck.CanChoose,
			})
		}
		for _, card := range m.out.Hand {
			m.actions = append(m.actions, action{
				kind:    actionPlay,
				id:      card.ID,
				label:   "Play: " + card.Title,
				enabled: true,
			})
		}
		for _, pinned := range m.out.Pinned {
			m.actions = append(m.actions, action{
				kind:    actionPinned,
				id:      pinned.ID,
				label:   content.Text(pinned.Title),
				detail:  content.Text(pinned.Subtitle),
				enabled: pinned.CanChoose,
			})
		}
		return
	}

	for i, choice := range m.out.Choices {
		m.actions = append(m.actions, action{
			kind:    actionChoice,
			index:   i,
			id:      choice.ID,
			label:   content.Text(choice.Title),
			detail:  choiceDetail(choice),
			enabled: choice.CanChoose,
		})
	}
}

// choiceDetail builds the secondary line for a choice: the subtitle plus
// check odds when the target scene declares a check.
func choiceDetail(c engine.Choice) string {
	parts := make([]string, 0, 2)
	if s := content.Text(c.Subtitle); s != "" {
		parts = append(parts, s)
	}
	if c.CheckQuality != "" && c.SuccessProb != nil {
		parts = append(parts, fmt.Sprintf("%s check, %s (%d%%)",
			prettify(c.CheckQuality), c.Difficulty, int(*c.SuccessProb*100)))
	}
	return strings.Join(parts, " ")
}

func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 20 {
		storyWidth = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(m.game.Title)) + "\n")
	if m.game.Author != "" {
		b.WriteString(promptStyle.Render("by "+m.game.Author) + "\n")
	}
	b.WriteString("\n")

	for i, page := range m.out.Pages {
		text := content.Text(page)
		if text == "" {
			continue
		}
		if i > 0 {
			b.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")
		}
		b.WriteString(wordwrap.String(text, storyWidth) + "\n\n")
	}

	if m.out.GameOver {
		b.WriteString(gameOverStyle.Render("THE END.") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	m.storyViewport.SetContent(b.String())
}

func (m *ConsoleUI) writeMetadata() string {
	st := m.eng.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	b.WriteString("Scene:\n")
	b.WriteString(st.SceneID + "\n\n")

	if len(st.Qualities) > 0 {
		b.WriteString("Qualities:\n")
		names := make([]string, 0, len(st.Qualities))
		for name := range st.Qualities {
			if strings.HasPrefix(name, "achievement_") || strings.HasPrefix(name, "game_achievement_") {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("• %s: %v\n", prettify(name), st.Qualities[name]))
		}
		b.WriteString("\n")
	}

	if len(st.Achievements) > 0 {
		b.WriteString("Achievements:\n")
		names := make([]string, 0, len(st.Achievements))
		for name := range st.Achievements {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString("★ " + prettify(name) + "\n")
		}
		b.WriteString("\n")
	}

	if hand := st.CurrentHands[st.SceneID]; len(hand) > 0 {
		b.WriteString(fmt.Sprintf("Hand: %d/%d cards\n\n", len(hand), m.out.MaxCards))
	}

	b.WriteString("Commands:\n")
	b.WriteString("• ↑/↓, Enter: Choose\n")
	b.WriteString("• 1-9: Choose directly\n")
	b.WriteString("• t: Copy transcript\n")
	b.WriteString("• s: Copy save data\n")
	b.WriteString("• Esc: Quit\n")

	return b.String()
}

// prettify turns a quality or achievement id into a display name:
// "dark_power" becomes "Dark Power".
func prettify(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

func (m ConsoleUI) copyTranscript() ConsoleUI {
	text := m.transcriptText()
	if text == "" {
		m.status = "Transcript is empty."
		return m
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.status = "Clipboard unavailable: " + err.Error()
		return m
	}
	m.status = "Transcript copied to clipboard."
	return m
}

func (m ConsoleUI) copySave() ConsoleUI {
	data, err := json.MarshalIndent(m.eng.ExportableState(), "", "  ")
	if err != nil {
		m.status = "Export failed: " + err.Error()
		return m
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		m.status = "Clipboard unavailable: " + err.Error()
		return m
	}
	m.status = "Save data copied to clipboard."
	return m
}

func (m ConsoleUI) transcriptText() string {
	var b strings.Builder
	for _, entry := range m.eng.Transcript() {
		switch v := entry.(type) {
		case string:
			b.WriteString(v)
		case []engine.Choice:
			for _, c := range v {
				b.WriteString("- " + content.Text(c.Title) + "\n")
			}
		default:
			b.WriteString(content.Text([]any{v}))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Quit Game?"))
	b.WriteString("\n\n")
	b.WriteString("Unsaved progress will be lost.")
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderActions() string {
	var b strings.Builder
	b.WriteString(separatorStyle.Render(strings.Repeat("─", m.storyViewport.Width-4)) + "\n")

	if len(m.actions) == 0 {
		if m.out.GameOver {
			b.WriteString(promptStyle.Render("Game over. Press Esc to quit."))
		} else {
			b.WriteString(promptStyle.Render("Nothing to do here."))
		}
	}
	for i, act := range m.actions {
		line := fmt.Sprintf("%d. %s", i+1, act.label)
		switch {
		case i == m.selected:
			line = selectedItemStyle.Render("▶ " + line)
		case !act.enabled:
			line = disabledItemStyle.Render("  " + line)
		default:
			line = itemStyle.Render("  " + line)
		}
		b.WriteString(line)
		if act.detail != "" {
			b.WriteString("  " + detailStyle.Render(act.detail))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			m.renderActions(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}
