package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

const (
	timePrecision   = time.Millisecond
	timestampLayout = "2006-01-02 15:04:05"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	groupStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	erroredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive runs.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    sync.WaitGroup
}

// NewTUI creates a new TUI writing to output.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

type groupStartMsg struct {
	description string
	index       int
	total       int
}

type stepResultMsg struct {
	result m.StepResult
}

type summaryMsg struct {
	report m.RunReport
}

// Start launches the progress program for run mode; catalog mode renders
// statically and needs no program.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	if config.mode != ModeRun {
		return nil
	}

	p.program = tea.NewProgram(newRunModel(), tea.WithOutput(p.output))

	p.done.Add(1)

	go func() {
		defer p.done.Done()

		_, _ = p.program.Run()
	}()

	return nil
}

// Close stops the progress program.
func (p *TUI) Close(_ context.Context) {
	if p.program != nil {
		p.program.Quit()
		p.done.Wait()
		p.program = nil
	}
}

// Wait blocks until the program exits (user quit or Close).
func (p *TUI) Wait(_ context.Context) {
	p.done.Wait()
}

// DisplayCatalog renders the scenario list with styles, without paging.
func (p *TUI) DisplayCatalog(ctx context.Context, groups []m.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Scenario catalog") + "\n\n")

	for i, group := range groups {
		description := group.Description
		if description == "" {
			description = faintStyle.Render("(infrastructure)")
		} else {
			description = groupStyle.Render(description)
		}

		fmt.Fprintf(&b, "  %3d  %s  %s\n", i, description, faintStyle.Render(verbsOf(group)))
	}

	fmt.Fprintf(&b, "\n  %d scenarios\n", len(groups))

	_, err := fmt.Fprint(p.output, b.String())

	return err
}

// DisplayGroupStart feeds the running program the next scenario.
func (p *TUI) DisplayGroupStart(ctx context.Context, group m.Group, index, total int) {
	if ctx.Err() != nil || p.program == nil {
		return
	}

	description := group.Description
	if description == "" {
		description = verbsOf(group)
	}

	p.program.Send(groupStartMsg{description: description, index: index, total: total})
}

// DisplayStepResult feeds the running program a completed step.
func (p *TUI) DisplayStepResult(ctx context.Context, result m.StepResult) {
	if ctx.Err() != nil || p.program == nil {
		return
	}

	p.program.Send(stepResultMsg{result: result})
}

// DisplayReport renders a previously saved run report statically.
func (p *TUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"Run report, build type %s, started %s",
		report.BuildType, report.StartedAt.Format(timestampLayout))) + "\n\n")

	for _, result := range report.Results {
		b.WriteString(renderStepLine(result) + "\n")
	}

	b.WriteString("\n" + renderSummary(report) + "\n")

	_, err := fmt.Fprint(p.output, b.String())

	return err
}

// DisplaySummary feeds the running program the final totals.
func (p *TUI) DisplaySummary(ctx context.Context, report m.RunReport) {
	if ctx.Err() != nil {
		return
	}

	if p.program == nil {
		_, _ = fmt.Fprintln(p.output, renderSummary(report))
		return
	}

	p.program.Send(summaryMsg{report: report})
}

func renderStepLine(result m.StepResult) string {
	status := result.Status.String()

	switch result.Status {
	case m.StatusPassed:
		status = passedStyle.Render(status)
	case m.StatusFailed:
		status = failedStyle.Render(status)
	case m.StatusSkipped:
		status = skippedStyle.Render(status)
	case m.StatusError:
		status = erroredStyle.Render(status)
	}

	line := fmt.Sprintf("  %-18s %-24s %s %s",
		status, result.Verb, groupStyle.Render(result.Group),
		faintStyle.Render(result.Duration.Round(timePrecision).String()))

	if result.Detail != "" && result.Status != m.StatusPassed {
		line += "\n" + faintStyle.Render("    "+strings.ReplaceAll(result.Detail, "\n", "\n    "))
	}

	return line
}

func renderSummary(report m.RunReport) string {
	passed, failed, skipped, errored := report.Counts()

	return fmt.Sprintf("%s, %s, %s, %s",
		passedStyle.Render(fmt.Sprintf("%d passed", passed)),
		failedStyle.Render(fmt.Sprintf("%d failed", failed)),
		skippedStyle.Render(fmt.Sprintf("%d skipped", skipped)),
		erroredStyle.Render(fmt.Sprintf("%d errored", errored)))
}

// visibleResults bounds the scrollback kept on screen during a run.
const visibleResults = 20

// runModel is the Bubble Tea model for run progress.
type runModel struct {
	spin    spinner.Model
	current string
	lines   []string
	summary string
	done    bool
}

func newRunModel() runModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return runModel{spin: spin}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spin.Tick
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.Type == tea.KeyCtrlC {
			return rm, tea.Quit
		}

		return rm, nil

	case groupStartMsg:
		rm.current = fmt.Sprintf("[%d/%d] %s", msg.index, msg.total, msg.description)
		return rm, nil

	case stepResultMsg:
		rm.lines = append(rm.lines, renderStepLine(msg.result))
		if len(rm.lines) > visibleResults {
			rm.lines = rm.lines[len(rm.lines)-visibleResults:]
		}

		return rm, nil

	case summaryMsg:
		rm.summary = renderSummary(msg.report)
		rm.done = true

		return rm, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		rm.spin, cmd = rm.spin.Update(msg)

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) View() string {
	var b strings.Builder

	for _, line := range rm.lines {
		b.WriteString(line + "\n")
	}

	if rm.done {
		b.WriteString("\n" + rm.summary + "\n")
	} else if rm.current != "" {
		b.WriteString(rm.spin.View() + " " + groupStyle.Render(rm.current) + "\n")
	}

	return b.String()
}
