package commands

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/l3aro/pyflow/pkg/simulate"
)

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorSuccess   = lipgloss.Color("42")
	colorWarning   = lipgloss.Color("220")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")
	colorAccent    = lipgloss.Color("213")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSecondary)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	indexStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Width(5).
			Align(lipgloss.Right)

	kindStyles = map[simulate.LogKind]lipgloss.Style{
		simulate.LogCall:      lipgloss.NewStyle().Foreground(colorPrimary),
		simulate.LogRecursion: lipgloss.NewStyle().Foreground(colorWarning),
		simulate.LogAttribute: lipgloss.NewStyle().Foreground(colorDim),
		simulate.LogConstruct: lipgloss.NewStyle().Foreground(colorSecondary),
		simulate.LogLambda:    lipgloss.NewStyle().Foreground(colorAccent),
		simulate.LogLoop:      lipgloss.NewStyle().Foreground(colorDim).Italic(true),
	}
)

func kindStyle(kind simulate.LogKind) lipgloss.Style {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
