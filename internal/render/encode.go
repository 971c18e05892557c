package render

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"
)

// EncodePNG writes the map raster as PNG.
func EncodePNG(w io.Writer, m *Map) error {
	if err := png.Encode(w, m.Image); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodePDF writes a single-page PDF sized to the figure with the raster
// filling the page.
func EncodePDF(w io.Writer, m *Map) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, m.Image); err != nil {
		return fmt.Errorf("encode pdf raster: %w", err)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           fpdf.SizeType{Wd: FigWidthIn, Ht: FigHeightIn},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("propmap", true)
	if m.Title != "" {
		pdf.SetTitle(m.Title, true)
	}
	pdf.AddPage()

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("map", opt, &raster)
	pdf.ImageOptions("map", 0, 0, FigWidthIn, FigHeightIn, false, opt, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("encode pdf: %w", err)
	}
	return nil
}
