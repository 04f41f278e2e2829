package document

import "testing"

func TestStyle_Merge(t *testing.T) {
	base := Style{Font: "Roboto", FontSize: 10, Alignment: AlignLeft}
	named := Style{FontSize: 18, Bold: true, Alignment: AlignCenter, Margin: M(0, 0, 0, 20)}

	got := base.Merge(named)
	if got.Font != "Roboto" {
		t.Errorf("Font = %q, want Roboto", got.Font)
	}
	if got.FontSize != 18 || !got.Bold || got.Alignment != AlignCenter {
		t.Errorf("Merge() = %+v, want size 18 bold centered", got)
	}
	if got.Margin == nil || got.Margin.Bottom() != 20 {
		t.Errorf("Margin = %v, want bottom 20", got.Margin)
	}

	// The merged margin must not alias the source.
	named.Margin[3] = 99
	if got.Margin.Bottom() != 20 {
		t.Errorf("Margin aliased source: bottom = %v", got.Margin.Bottom())
	}
}

func TestDefinition_ResolveText(t *testing.T) {
	def := &Definition{
		DefaultStyle: Style{Font: "Roboto", FontSize: 10},
		Styles: map[string]Style{
			"total": {FontSize: 14, Bold: true, Alignment: AlignRight},
		},
	}

	got := def.ResolveText(TextBlock{Text: "x", Style: "total", Inline: Style{Color: ColorNegative}})
	if got.Font != "Roboto" || got.FontSize != 14 || !got.Bold || got.Alignment != AlignRight || got.Color != ColorNegative {
		t.Errorf("ResolveText() = %+v", got)
	}

	plain := def.ResolveText(TextBlock{Text: "y", Style: "missing"})
	if plain.FontSize != 10 || plain.Bold {
		t.Errorf("ResolveText() with unknown style = %+v, want default", plain)
	}
}

func TestDefinition_Walkers(t *testing.T) {
	def := &Definition{
		Content: []Block{
			ColumnsBlock{Columns: []Block{
				ImageBlock{Path: "logo.jpg"},
				TextBlock{Text: "Org"},
				nil,
			}},
			TextBlock{Text: "Title"},
			TableBlock{HeaderRows: 1, Body: [][]Cell{{{Text: "h"}}, {{Text: "a"}}, {{Text: "b"}}}},
			ImageBlock{Path: "sig.png"},
		},
	}

	if texts := def.Texts(); len(texts) != 2 || texts[0] != "Org" || texts[1] != "Title" {
		t.Errorf("Texts() = %v", texts)
	}
	if images := def.Images(); len(images) != 2 || images[0] != "logo.jpg" || images[1] != "sig.png" {
		t.Errorf("Images() = %v", images)
	}
	tables := def.Tables()
	if len(tables) != 1 {
		t.Fatalf("len(Tables()) = %d, want 1", len(tables))
	}
	if rows := tables[0].BodyRows(); len(rows) != 2 {
		t.Errorf("len(BodyRows()) = %d, want 2", len(rows))
	}
}

func TestTableBlock_BodyRowsHeaderOnly(t *testing.T) {
	tbl := TableBlock{HeaderRows: 1, Body: [][]Cell{{{Text: "Date"}}}}
	if rows := tbl.BodyRows(); rows != nil {
		t.Errorf("BodyRows() = %v, want nil", rows)
	}
}
