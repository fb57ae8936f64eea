package prompt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/petridish/petridish/internal/spec"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TerminalBackend asks questions interactively with single-question
// bubbletea models: text input, confirm, select and multi-select.
type TerminalBackend struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalBackend creates a backend bound to the process terminal.
// Prompts go to stderr so generated-project paths can be piped.
func NewTerminalBackend() *TerminalBackend {
	return &TerminalBackend{in: os.Stdin, out: os.Stderr}
}

// Ask dispatches on the question shape.
func (b *TerminalBackend) Ask(question Question) (spec.Value, error) {
	switch {
	case question.Multi:
		return b.askMulti(question)
	case len(question.Choices) > 0:
		return b.askSelect(question)
	case question.Kind == spec.KindBool:
		return b.askConfirm(question)
	default:
		return b.askInput(question)
	}
}

func (b *TerminalBackend) run(model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model, tea.WithInput(b.in), tea.WithOutput(b.out))
	return program.Run()
}

func (b *TerminalBackend) askInput(question Question) (spec.Value, error) {
	final, err := b.run(newInputModel(question))
	if err != nil {
		return spec.Value{}, fmt.Errorf("prompt ui: %w", err)
	}
	model := final.(inputModel)
	if model.cancelled {
		return spec.Value{}, ErrCancelled
	}
	if model.input.Value() == "" && question.Default != nil {
		return *question.Default, nil
	}
	return spec.StringValue(model.input.Value()), nil
}

func (b *TerminalBackend) askConfirm(question Question) (spec.Value, error) {
	final, err := b.run(newConfirmModel(question))
	if err != nil {
		return spec.Value{}, fmt.Errorf("prompt ui: %w", err)
	}
	model := final.(confirmModel)
	if model.cancelled {
		return spec.Value{}, ErrCancelled
	}
	return spec.BoolValue(model.value), nil
}

func (b *TerminalBackend) askSelect(question Question) (spec.Value, error) {
	final, err := b.run(newSelectModel(question))
	if err != nil {
		return spec.Value{}, fmt.Errorf("prompt ui: %w", err)
	}
	model := final.(selectModel)
	if model.cancelled {
		return spec.Value{}, ErrCancelled
	}
	return question.Choices[model.cursor], nil
}

func (b *TerminalBackend) askMulti(question Question) (spec.Value, error) {
	final, err := b.run(newMultiModel(question))
	if err != nil {
		return spec.Value{}, fmt.Errorf("prompt ui: %w", err)
	}
	model := final.(multiModel)
	if model.cancelled {
		return spec.Value{}, ErrCancelled
	}

	selected := make([]spec.Value, 0, len(question.Choices))
	for i, choice := range question.Choices {
		if model.checked[i] {
			selected = append(selected, choice)
		}
	}
	return spec.ListValue(selected), nil
}

func header(question Question) string {
	line := questionStyle.Render(question.Message)
	if question.Help != "" {
		line += " " + hintStyle.Render("("+question.Help+")")
	}
	if question.LastError != "" {
		line += "\n" + errorStyle.Render(question.LastError)
	}
	return line
}

// --- free text ---

type inputModel struct {
	question  Question
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(question Question) inputModel {
	input := textinput.New()
	input.Prompt = "> "
	if question.Default != nil {
		input.Placeholder = question.Default.Display()
	}
	input.Focus()
	return inputModel{question: question, input: input}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return header(m.question) + "\n" + m.input.View() + "\n"
}

// --- confirm ---

type confirmModel struct {
	question  Question
	value     bool
	done      bool
	cancelled bool
}

func newConfirmModel(question Question) confirmModel {
	value := false
	if question.Default != nil {
		value = question.Default.Bool()
	}
	return confirmModel{question: question, value: value}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	hint := "(y/N)"
	if m.value {
		hint = "(Y/n)"
	}
	return header(m.question) + " " + hintStyle.Render(hint) + "\n"
}

// --- single select ---

type selectModel struct {
	question  Question
	cursor    int
	done      bool
	cancelled bool
}

func newSelectModel(question Question) selectModel {
	cursor := 0
	if question.Default != nil {
		for i, choice := range question.Choices {
			if choice.Equal(*question.Default) {
				cursor = i
				break
			}
		}
	}
	return selectModel{question: question, cursor: cursor}
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.question.Choices)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(header(m.question))
	b.WriteString("\n")
	for i, choice := range m.question.Choices {
		marker := "  "
		label := choice.Display()
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		b.WriteString(marker + label + "\n")
	}
	return b.String()
}

// --- multi select ---

type multiModel struct {
	question  Question
	cursor    int
	checked   map[int]bool
	errMsg    string
	done      bool
	cancelled bool
}

func newMultiModel(question Question) multiModel {
	checked := make(map[int]bool)
	if question.Default != nil {
		for _, preset := range question.Default.List() {
			for i, choice := range question.Choices {
				if choice.Equal(preset) {
					checked[i] = true
				}
			}
		}
	}
	return multiModel{question: question, checked: checked}
}

func (m multiModel) Init() tea.Cmd { return nil }

func (m multiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.question.Choices)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		m.checked[m.cursor] = !m.checked[m.cursor]
		m.errMsg = ""
	case "enter":
		if len(m.selection()) == 0 && !m.question.Emptyable {
			m.errMsg = "no item is selected"
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m multiModel) selection() []int {
	indexes := make([]int, 0, len(m.checked))
	for i, on := range m.checked {
		if on {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func (m multiModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(header(m.question))
	b.WriteString("\n")
	for i, choice := range m.question.Choices {
		box := "[ ]"
		if m.checked[i] {
			box = checkedStyle.Render("[x]")
		}
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker + box + " " + choice.Display() + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(hintStyle.Render("space toggles, enter confirms") + "\n")
	return b.String()
}
