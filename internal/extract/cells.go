package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rowCells returns the trimmed text of each td in a row. Rows rendered without td
// elements fall back to the row text split on newlines, skipping blank lines.
func rowCells(row *goquery.Selection) []string {
	tds := row.Find("td")
	if tds.Length() > 0 {
		cells := make([]string, 0, tds.Length())
		tds.Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cleanText(td.Text()))
		})
		return cells
	}

	var cells []string
	for _, line := range strings.Split(row.Text(), "\n") {
		if line = cleanText(line); line != "" {
			cells = append(cells, line)
		}
	}
	return cells
}

// cleanText trims the value and collapses internal whitespace runs, including &nbsp;
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textOf(doc *goquery.Document, selector string) (string, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return cleanText(sel.Text()), true
}
