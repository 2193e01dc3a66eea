package ui

import "strings"

// Logo is the ASCII banner shown in help and version output.
const Logo = `
                       _
 ___ _   _ _ __     __| | __ _ _   _
/ __| | | | '_ \   / _` + "`" + ` |/ _` + "`" + ` | | | |
\__ \ |_| | | | | | (_| | (_| | |_| |
|___/\__,_|_| |_|  \__,_|\__,_|\__, |
                               |___/
`

// Version holds the application version, set at startup.
var Version = "dev"

// SetVersion sets the application version for logo rendering.
func SetVersion(v string) {
	Version = v
}

// RenderLogo returns the styled logo with the version underneath.
func RenderLogo() string {
	var result strings.Builder
	for _, line := range strings.Split(Logo, "\n") {
		if line != "" {
			result.WriteString(LogoStyle.Render(line) + "\n")
		}
	}
	v := Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	result.WriteString("\n" + DimStyle.Render(v) + "\n\n")
	return result.String()
}
