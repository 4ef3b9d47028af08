package core

// Color is the foreground color of a screen cell. The platform maps each one
// to an ANSI 256-color code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorBrightRed
	ColorBrightYellow
	ColorBrightMagenta
	ColorBrightWhite
	ColorGray
	ColorDarkGray
)
