package main

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")

	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	spokenStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	latestStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	brailleStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	sourcePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)
