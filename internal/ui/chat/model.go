// Package chat is the terminal chat screen. It renders controller snapshots and
// forwards key presses; every blocking controller call runs inside a tea.Cmd.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	chatmodel "github.com/zhouzirui/daily-hug/internal/model/chat"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
)

const failedTurnText = "(답장을 받지 못했어요)"

type stateMsg conversation.State

type submitResultMsg struct{ err error }

type initializedMsg struct{}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx        context.Context
	controller *conversation.Controller
	traits     persona.Store
	updates    chan conversation.State

	input  textinput.Model
	spin   spinner.Model
	state  conversation.State
	notice string
	width  int
}

// New builds the chat screen for controller. traits supplies the tag colors
// and may be nil. Updates stop flowing once ctx is cancelled.
func New(ctx context.Context, controller *conversation.Controller, traits persona.Store) Model {
	in := textinput.New()
	in.Placeholder = "메시지를 입력하세요"
	in.Prompt = "> "
	in.CharLimit = 0
	in.Width = 60
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	updates := make(chan conversation.State, 16)
	controller.Subscribe(func(state conversation.State) {
		select {
		case updates <- state:
		case <-ctx.Done():
		}
	})

	return Model{
		ctx:        ctx,
		controller: controller,
		traits:     traits,
		updates:    updates,
		input:      in,
		spin:       s,
		state:      controller.State(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		textinput.Blink,
		waitForState(m.updates),
		initializeCmd(m.ctx, m.controller),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case stateMsg:
		wasInFlight := m.state.InFlight
		m.state = conversation.State(msg)
		var cmd tea.Cmd
		switch {
		case m.state.InFlight && !wasInFlight:
			m.input.Blur()
		case !m.state.InFlight && wasInFlight:
			m.input.SetValue(m.state.Input)
			cmd = m.input.Focus()
		}
		return m, tea.Batch(cmd, waitForState(m.updates))

	case submitResultMsg:
		switch {
		case errors.Is(msg.err, conversation.ErrRequestInFlight):
			m.notice = "답장을 기다리는 중이에요"
		case errors.Is(msg.err, conversation.ErrGreetingPending):
			m.notice = "인사말을 기다리는 중이에요"
		default:
			m.notice = ""
		}
		return m, nil

	case initializedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
		if m.state.InFlight {
			return m, nil
		}
		previous := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if !m.controller.SetInput(m.input.Value()) {
			m.input.SetValue(previous)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state.InFlight {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if !m.controller.SetInput(text) {
		return m, nil
	}
	m.notice = ""
	return m, submitCmd(m.ctx, m.controller)
}

func (m Model) View() string {
	var b strings.Builder
	params := m.controller.Params()

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s님, 안녕하세요!", params.UserName())))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(params.PersonaName()))
	for _, label := range params.Traits() {
		b.WriteString(m.renderTag(label))
	}
	b.WriteString("\n\n")

	if len(m.state.Turns) == 0 {
		b.WriteString(subtleStyle.Render(params.PersonaName() + "의 인사를 기다리는 중..."))
		b.WriteString("\n\n")
	}
	for _, turn := range m.state.Turns {
		b.WriteString(m.renderTurn(turn, params))
		b.WriteString("\n\n")
	}

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("  ")
	if m.state.InFlight || strings.TrimSpace(m.input.Value()) == "" {
		b.WriteString(sendMuted.Render("[Enter] 보내기"))
	} else {
		b.WriteString(sendActive.Render("[Enter] 보내기"))
	}
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Esc / Ctrl+C 종료"))
	return b.String()
}

func (m Model) renderTurn(turn chatmodel.Turn, params persona.Params) string {
	if turn.Speaker == chatmodel.SpeakerUser {
		return userStyle.Render(params.UserName()+":") + " " + turn.Text
	}

	label := personaStyle.Render(params.PersonaName() + ":")
	switch turn.Status {
	case chatmodel.StatusPending:
		return label + " " + m.spin.View()
	case chatmodel.StatusFailed:
		return label + " " + failedStyle.Render(failedTurnText)
	default:
		return label + " " + turn.Text
	}
}

func (m Model) renderTag(label string) string {
	color := ""
	if m.traits != nil {
		if trait, ok := m.traits.FindByLabel(label); ok {
			color = trait.Color
		}
	}
	return " " + tagStyle(color).Render("#"+label)
}

func waitForState(updates <-chan conversation.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-updates)
	}
}

func initializeCmd(ctx context.Context, controller *conversation.Controller) tea.Cmd {
	return func() tea.Msg {
		controller.Initialize(ctx)
		return initializedMsg{}
	}
}

func submitCmd(ctx context.Context, controller *conversation.Controller) tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{err: controller.SubmitInput(ctx)}
	}
}
