// Package i18n holds the PT and UK display strings.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Lang string

const (
	PT Lang = "PT"
	UK Lang = "UK"
)

// Langs lists the selectable languages in menu order.
var Langs = []Lang{PT, UK}

// ParseLang accepts "PT"/"UK" in any case, plus "en" and "pt" tags.
func ParseLang(s string) (Lang, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PT", "PT-PT", "PT_PT":
		return PT, true
	case "UK", "EN", "EN-GB", "EN_GB", "GB":
		return UK, true
	}
	return PT, false
}

// Next cycles PT -> UK -> PT.
func (l Lang) Next() Lang {
	if l == PT {
		return UK
	}
	return PT
}

type Strings struct {
	Title           string
	PropNameLabel   string
	PropNameDefault string
	UploadLabel     string
	Processing      string
	AreaM2          string
	AreaHa          string
	Perimeter       string
	MapTitle        string
	LegendArea      string
	LegendDate      string
	ExportTitle     string
	FreeVersion     string
	FreeDesc        string
	PremiumVersion  string
	PremiumDesc     string
	BtnPNG          string
	BtnBuyPDF       string
	BtnPremiumPDF   string
	Watermark       string
	FooterCRS       string
}

var tables = map[Lang]Strings{
	PT: {
		Title:           "Gerador de Mapas de Propriedade",
		PropNameLabel:   "Nome da Propriedade (ex: Quinta do Vale)",
		PropNameDefault: "Minha Propriedade",
		UploadLabel:     "Carregue o ficheiro (GPX, KML, GeoJSON)",
		Processing:      "A processar...",
		AreaM2:          "Área (m²)",
		AreaHa:          "Área (ha)",
		Perimeter:       "Perímetro (m)",
		MapTitle:        "Mapa de Propriedade",
		LegendArea:      "Área",
		LegendDate:      "Data",
		ExportTitle:     "Exportar Resultados",
		FreeVersion:     "Versão Grátis (Amostra)",
		FreeDesc:        "- Imagem com marca de água\n- Sem escala gráfica",
		PremiumVersion:  "Versão Premium (PDF)",
		PremiumDesc:     "- PDF Limpo (Sem Marcas)\n- Escala e Bússola Profissionais\n- Sistema de Coordenadas PT-TM06",
		BtnPNG:          "Descarregar Amostra (PNG)",
		BtnBuyPDF:       "Comprar PDF Profissional",
		BtnPremiumPDF:   "Gerar PDF Premium",
		Watermark:       "AMOSTRA DE VALIDAÇÃO\nOBTER PDF PROFISSIONAL",
		FooterCRS:       "Sistema de Coordenadas: ETRS89 / PT-TM06 (Oficial Portugal)",
	},
	UK: {
		Title:           "Property Map Generator",
		PropNameLabel:   "Property Name (e.g., Green Valley Farm)",
		PropNameDefault: "My Property",
		UploadLabel:     "Upload file (GPX, KML, GeoJSON)",
		Processing:      "Processing...",
		AreaM2:          "Area (sqm)",
		AreaHa:          "Area (ha)",
		Perimeter:       "Perimeter (m)",
		MapTitle:        "Property Map",
		LegendArea:      "Area",
		LegendDate:      "Date",
		ExportTitle:     "Export Results",
		FreeVersion:     "Free Version (Sample)",
		FreeDesc:        "- Watermarked image\n- No scale bar included",
		PremiumVersion:  "Premium Version (PDF)",
		PremiumDesc:     "- Clean PDF (No Watermarks)\n- Professional Scale & Compass\n- Accurate Geo-Metrics",
		BtnPNG:          "Download Sample (PNG)",
		BtnBuyPDF:       "Get Professional PDF",
		BtnPremiumPDF:   "Generate Premium PDF",
		Watermark:       "VALIDATION SAMPLE\nGET PROFESSIONAL PDF",
		FooterCRS:       "Coordinate System: ETRS89 / PT-TM06 (Portugal official)",
	},
}

// For returns the string table for l, falling back to PT.
func For(l Lang) Strings {
	if s, ok := tables[l]; ok {
		return s
	}
	return tables[PT]
}

// PropertyName returns name, or the localized default when name is blank.
func (s Strings) PropertyName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return s.PropNameDefault
}

var numbers = message.NewPrinter(language.English)

// Thousands formats v with no decimals and comma grouping ("12,345").
func Thousands(v float64) string {
	return numbers.Sprintf("%.0f", v)
}
