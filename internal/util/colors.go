package util

import "github.com/fatih/color"

var colorsOptions = map[string]color.Attribute{
	"red":    color.FgHiRed,
	"green":  color.FgGreen,
	"yellow": color.FgYellow,
	"faint":  color.Faint,
	"bold":   color.Bold,
}

// ColorOutput wraps text in the named attributes. Unknown names are ignored.
func ColorOutput(text string, colorOptions ...string) string {
	attributes := []color.Attribute{}
	for _, option := range colorOptions {
		if o, ok := colorsOptions[option]; ok {
			attributes = append(attributes, o)
		}
	}
	c := color.New(attributes...)
	return c.Sprint(text)
}
