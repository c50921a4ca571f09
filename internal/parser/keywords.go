package parser

import "strings"

type keywordGroup struct {
	category string
	keywords []string
}

// Tables are slices so lookup order is fixed.
var (
	englishKeywords = []keywordGroup{
		{"food", []string{"lunch", "dinner", "breakfast", "food", "restaurant", "cafe"}},
		{"transport", []string{"uber", "taxi", "bus", "metro", "gas", "fuel"}},
		{"shopping", []string{"shopping", "clothes", "amazon", "store"}},
		{"entertainment", []string{"movie", "cinema", "game", "concert", "netflix"}},
	}

	spanishKeywords = []keywordGroup{
		{"food", []string{"almuerzo", "cena", "desayuno", "comida", "restaurante", "café"}},
		{"transport", []string{"uber", "taxi", "autobús", "metro", "gasolina"}},
		{"shopping", []string{"compras", "ropa", "tienda"}},
		{"entertainment", []string{"película", "cine", "juego", "concierto"}},
	}
)

// DetectCategory returns the category hint for description, or "" when no
// keyword is contained in it.
func DetectCategory(description string) string {
	desc := strings.ToLower(description)
	for _, table := range [][]keywordGroup{englishKeywords, spanishKeywords} {
		for _, g := range table {
			for _, kw := range g.keywords {
				if strings.Contains(desc, kw) {
					return g.category
				}
			}
		}
	}
	return ""
}
