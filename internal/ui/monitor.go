package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/aprilaire/internal/client"
	"github.com/muurk/aprilaire/internal/protocol"
)

// UpdateMsg carries a client update into a running monitor. Send it with
// (*tea.Program).Send from the client's update callback.
type UpdateMsg client.Update

// MonitorActions are invoked from key bindings. Nil actions are ignored.
type MonitorActions struct {
	Sync    func() // "s": request a full status burst
	Refresh func() // "r": re-read control, sensors and hold
}

type eventEntry struct {
	at   time.Time
	text string
	warn bool
}

// Monitor is the Bubble Tea model behind `aprilaire monitor`.
type Monitor struct {
	address   string
	state     *State
	actions   MonitorActions
	events    []eventEntry
	maxEvents int
	spinner   spinner.Model
	width     int
	height    int
	quitting  bool
	now       func() time.Time
}

// NewMonitor creates a monitor for the thermostat at address.
func NewMonitor(address string, actions MonitorActions) Monitor {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(WarningColor)

	width, height := GetTerminalSize()
	return Monitor{
		address:   address,
		state:     NewState(),
		actions:   actions,
		maxEvents: 100,
		spinner:   sp,
		width:     width,
		height:    height,
		now:       time.Now,
	}
}

// State exposes the accumulated thermostat state.
func (m Monitor) State() *State {
	return m.state
}

func (m Monitor) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "s":
			if m.actions.Sync != nil {
				m.actions.Sync()
				m.addEvent("sync requested", false)
			}
		case "r":
			if m.actions.Refresh != nil {
				m.actions.Refresh()
				m.addEvent("refresh requested", false)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case UpdateMsg:
		u := client.Update(msg)
		m.state.Apply(u, m.now())
		m.addEvent(FormatUpdate(u), u.IsStatus() && !m.state.Connected)
	}

	return m, nil
}

func (m *Monitor) addEvent(text string, warn bool) {
	m.events = append(m.events, eventEntry{at: m.now(), text: text, warn: warn})
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

func (m Monitor) View() string {
	if m.quitting {
		return "Disconnecting...\n"
	}

	var b strings.Builder
	b.WriteString(PanelTitleStyle.Render("APRILAIRE MONITOR"))
	b.WriteString("  ")
	b.WriteString(TimestampStyle.Render(m.address + " | s: sync  r: refresh  q: quit"))
	b.WriteString("\n")
	b.WriteString(m.connectionLine())
	b.WriteString("\n\n")

	st := m.state
	climate := m.panel("Climate",
		row("Mode", st.Mode()),
		row("Fan", st.FanMode()),
		row("Heat to", HeatStyle.Render(st.Temperature(protocol.DomainControl, protocol.AttrControl, protocol.FieldHeatSetpoint))),
		row("Cool to", CoolStyle.Render(st.Temperature(protocol.DomainControl, protocol.AttrControl, protocol.FieldCoolSetpoint))),
		row("Hold", st.Hold()),
	)
	sensors := m.panel("Sensors",
		row("Indoor", st.Temperature(protocol.DomainSensors, protocol.AttrSensorsControlling, protocol.FieldIndoorTemperatureControllingSensorValue)),
		row("Outdoor", st.Temperature(protocol.DomainSensors, protocol.AttrSensorsControlling, protocol.FieldOutdoorTemperatureControllingSensorValue)),
		row("Humidity", st.Humidity(protocol.DomainSensors, protocol.AttrSensorsControlling, protocol.FieldIndoorHumidityControllingSensorValue)),
		row("Dehumidify", st.Humidity(protocol.DomainControl, protocol.AttrDehumidification, protocol.FieldDehumidificationSetpoint)),
		row("Humidify", st.Humidity(protocol.DomainControl, protocol.AttrHumidification, protocol.FieldHumidificationSetpoint)),
	)
	device := m.panel("Thermostat",
		row("Name", st.Text(protocol.DomainIdentification, protocol.AttrIdentificationName, protocol.FieldName)),
		row("Location", st.Text(protocol.DomainIdentification, protocol.AttrIdentificationName, protocol.FieldLocation)),
		row("MAC", st.Text(protocol.DomainIdentification, protocol.AttrIdentificationMAC, protocol.FieldMACAddress)),
		row("Model", st.Model()),
		row("Running", st.EquipmentRunning()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, climate, " ", sensors, " ", device))
	b.WriteString("\n\n")

	b.WriteString(PanelTitleStyle.Render("Recent Events"))
	b.WriteString("\n")
	b.WriteString(PanelStyle.Width(max(m.width-4, 20)).Render(m.eventLog()))
	return b.String()
}

func (m Monitor) connectionLine() string {
	st := m.state
	switch {
	case st.Connected:
		return StepCompleteStyle.Render(ConnectedMarker + " connected")
	case st.Reconnecting || !st.Stopped:
		return m.spinner.View() + StepRunningStyle.Render(" "+st.ConnectionLabel()+"...")
	default:
		return ErrorMessageStyle.Render(DisconnectedMarker + " " + st.ConnectionLabel())
	}
}

func (m Monitor) panel(title string, rows ...string) string {
	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{PanelTitleStyle.Render(title)}, rows...)...)
	return PanelStyle.Render(body)
}

func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

func (m Monitor) eventLog() string {
	if len(m.events) == 0 {
		return TimestampStyle.Render("(no events yet)")
	}

	// Leave room for the header and the panels.
	visible := max(m.height-16, 5)
	start := max(len(m.events)-visible, 0)

	lines := make([]string, 0, len(m.events)-start)
	for _, e := range m.events[start:] {
		text := ValueStyle.Render(e.text)
		if e.warn {
			text = StepRunningStyle.Render(e.text)
		}
		lines = append(lines, fmt.Sprintf("%s %s", TimestampStyle.Render(e.at.Format("15:04:05.000")), text))
	}
	return strings.Join(lines, "\n")
}
