package render

// FontConfig points at the four TrueType variants of one family. Leaving every
// path empty selects the built-in Helvetica core font.
type FontConfig struct {
	Family      string `toml:"family"`
	Normal      string `toml:"normal"`
	Bold        string `toml:"bold"`
	Italics     string `toml:"italics"`
	BoldItalics string `toml:"bold_italics"`
}

func (f FontConfig) empty() bool {
	return f.Normal == "" && f.Bold == "" && f.Italics == "" && f.BoldItalics == ""
}

// Config holds page layout settings for the FPDF renderer.
type Config struct {
	PageSize    string
	Margin      float64
	LineHeight  float64
	CellPadding float64
	Fonts       FontConfig
}

const coreFontFamily = "Helvetica"

// DefaultConfig returns an A4 layout using the core font.
func DefaultConfig() Config {
	return Config{
		PageSize:    "A4",
		Margin:      40,
		LineHeight:  1.3,
		CellPadding: 4,
	}
}

func applyConfig(dst *Config, src Config) {
	if src.PageSize != "" {
		dst.PageSize = src.PageSize
	}
	if src.Margin > 0 {
		dst.Margin = src.Margin
	}
	if src.LineHeight > 0 {
		dst.LineHeight = src.LineHeight
	}
	if src.CellPadding > 0 {
		dst.CellPadding = src.CellPadding
	}
	dst.Fonts = src.Fonts
}
