package colours

import "github.com/fatih/color"

// Palette for console output. Log lines go through logrus, never these.
var (
	Title   = color.New(color.FgCyan, color.Bold)
	OnAir   = color.New(color.FgHiWhite, color.BgRed, color.Bold)
	Track   = color.New(color.FgMagenta)
	Caption = color.New(color.FgWhite, color.Italic)
	Muted   = color.New(color.FgHiBlack)
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)
