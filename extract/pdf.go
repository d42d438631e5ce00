package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"
)

// PDF returns the text of every page, one output line per text baseline.
func PDF(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var out strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		writePage(&out, p.Content().Text)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func writePage(out *strings.Builder, runs []pdf.Text) {
	var prev *pdf.Text
	for i := range runs {
		t := &runs[i]
		if prev != nil {
			tol := math.Max(prev.FontSize, 1) / 2
			switch {
			case math.Abs(t.Y-prev.Y) > tol:
				out.WriteString("\n")
			case t.X-(prev.X+prev.W) > prev.FontSize*0.2:
				out.WriteString(" ")
			}
		}
		out.WriteString(t.S)
		prev = t
	}
}
