package sequence

import "github.com/charmbracelet/log"

// Default layout constants, in diagram units.
const (
	DefaultOriginX        = 50
	DefaultLifelineTop    = 20
	DefaultLifelineMargin = 50
	DefaultCharWidth      = 10
	DefaultMessageTop     = 140
	DefaultRowHeight      = 50
	DefaultHeaderHeight   = 20
	DefaultGap            = 20
)

// Options holds the layout constants. Zero fields take their defaults.
type Options struct {
	// OriginX is the x of the first lifeline.
	OriginX float64 `toml:"origin_x" json:"originX"`
	// LifelineTop is the y where lifelines start.
	LifelineTop float64 `toml:"lifeline_top" json:"lifelineTop"`
	// LifelineMargin is the space added after each lifeline label.
	LifelineMargin float64 `toml:"lifeline_margin" json:"lifelineMargin"`
	// CharWidth is the width of one display column of a label.
	CharWidth float64 `toml:"char_width" json:"charWidth"`
	// MessageTop is the y of the first message row.
	MessageTop float64 `toml:"message_top" json:"messageTop"`
	// RowHeight is the vertical space taken by one message.
	RowHeight float64 `toml:"row_height" json:"rowHeight"`
	// HeaderHeight is the height of a fragment header.
	HeaderHeight float64 `toml:"header_height" json:"headerHeight"`
	// Gap separates a fragment from whatever follows it.
	Gap float64 `toml:"gap" json:"gap"`

	// Logger receives debug output. Nil disables logging.
	Logger *log.Logger `toml:"-" json:"-"`
}

// DefaultOptions returns the default layout constants.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy with every zero constant replaced by its default.
func (o Options) WithDefaults() Options {
	set := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	set(&o.OriginX, DefaultOriginX)
	set(&o.LifelineTop, DefaultLifelineTop)
	set(&o.LifelineMargin, DefaultLifelineMargin)
	set(&o.CharWidth, DefaultCharWidth)
	set(&o.MessageTop, DefaultMessageTop)
	set(&o.RowHeight, DefaultRowHeight)
	set(&o.HeaderHeight, DefaultHeaderHeight)
	set(&o.Gap, DefaultGap)
	return o
}
