package activity

// TypeColors is the pair of colors used to draw a block of a given type.
type TypeColors struct {
	Background string
	Border     string
}

var typeColors = map[Type]TypeColors{
	TypeTask:  {Background: "#A67C52", Border: "#8E6942"},
	TypeEvent: {Background: "#5B8DEF", Border: "#4A7BD8"},
	TypeHabit: {Background: "#43A680", Border: "#378B6A"},
}

// ColorsFor returns the default colors of t. Unknown types use the task colors.
func ColorsFor(t Type) TypeColors {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return typeColors[TypeTask]
}

// Palette is the set of color overrides offered when creating or editing an activity.
var Palette = []string{
	"#A67C52", "#5B8DEF", "#43A680", "#E57373", "#F06292", "#BA68C8",
	"#9575CD", "#7986CB", "#64B5F6", "#4FC3F7", "#4DD0E1", "#4DB6AC",
	"#81C784", "#AED581", "#FFD54F", "#FFB74D", "#FF8A65", "#A1887F",
}

// DurationPresets are the durations, in minutes, offered when creating an activity.
var DurationPresets = []int{15, 30, 45, 60, 90, 120}

// ValidateColor accepts the empty string (no override) or a #RRGGBB hex color.
func ValidateColor(c string) error {
	if c == "" {
		return nil
	}
	if len(c) != 7 || c[0] != '#' {
		return ErrInvalidColor
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return ErrInvalidColor
		}
	}
	return nil
}
