package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"pdf-slide-synth/internal/domain"

	"github.com/jung-kurt/gofpdf"
)

type handoutDeck struct {
	theme  domain.Theme
	preset ThemePreset
	title  string
	slides []domain.SlideRecord
	assets deckAssets
}

// buildHandout writes a landscape PDF with the same layout grid as the PPTX:
// one cover page followed by one page per slide.
func buildHandout(deck handoutDeck) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "in",
		OrientationStr: "L",
		Size:           gofpdf.SizeType{Wd: pageWidthIn, Ht: pageHeightIn},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(deck.title, true)
	pdf.SetCreator("slide-synth", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	font := handoutFont(deck.preset.Font)
	p := deck.preset

	// Cover.
	pdf.AddPage()
	fillPage(pdf, p.Primary)
	if p.AbstractCover && deck.assets.cover != nil {
		pdf.SetAlpha(0.2, "Normal")
		drawImage(pdf, "cover", deck.assets.cover, 0, 0, pageWidthIn, pageHeightIn)
		pdf.SetAlpha(1, "Normal")
	}
	if p.AccentBar {
		setFill(pdf, p.Accent)
		pdf.Rect(0, 0, 0.5, pageHeightIn, "F")
	}
	pdf.SetFont(font, "B", 48)
	setText(pdf, colorWhite)
	pdf.SetXY(1.5, 2.5)
	pdf.CellFormat(pageWidthIn*0.8, 2, tr(strings.ToUpper(ExportBaseName(deck.title))), "", 0, "LM", false, 0, "")
	pdf.SetFont(font, "B", 14)
	setText(pdf, colorMuted)
	pdf.SetXY(1.5, 5.8)
	pdf.CellFormat(pageWidthIn*0.8, 0.5, tr(strings.ToUpper(string(deck.theme))+" STRATEGY DECK"), "", 0, "LT", false, 0, "")

	for i, slide := range deck.slides {
		pdf.AddPage()
		fillPage(pdf, p.Secondary)

		category := strings.ToUpper(slide.Category)
		if category == "" {
			category = strings.ToUpper(domain.DefaultSlideCategory)
		}
		pdf.SetFont(font, "B", 9)
		setText(pdf, p.Accent)
		pdf.SetXY(0.5, 0.15)
		pdf.CellFormat(3, 0.2, tr(category), "", 0, "LT", false, 0, "")

		titleColor := p.Text
		if p.TitleInPrimary {
			titleColor = p.Primary
		}
		pdf.SetFont(font, "B", 24)
		setText(pdf, titleColor)
		pdf.SetXY(0.5, 0.35)
		pdf.CellFormat(pageWidthIn*0.9, 0.8, tr(slide.Title), "", 0, "LM", false, 0, "")

		image := deck.assets.slideImage(i)
		hasImage := slide.HasImage() && image != nil
		textW, size := 12.3, 14.0
		if hasImage {
			textW, size = 6.5, 12.0
		}
		pdf.SetFont(font, "", size)
		setText(pdf, p.Text)
		y := 1.3
		for _, bullet := range slide.Bullets {
			pdf.SetXY(0.5, y+8.0/72)
			pdf.MultiCell(textW, 22.0/72, tr("• "+bullet), "", "L", false)
			y = pdf.GetY()
			if y > 6.8 {
				break
			}
		}

		if hasImage {
			setFill(pdf, colorImageFill)
			setDraw(pdf, colorImageLine)
			pdf.SetLineWidth(1.0 / 72)
			pdf.Rect(7.3, 1.3, 5.5, 4.0, "FD")
			drawImage(pdf, "slide"+strconv.Itoa(i+1), image, 7.4, 1.4, 5.3, 3.8)
			pdf.SetFont(font, "I", 8)
			setText(pdf, colorCaption)
			pdf.SetXY(7.3, 5.4)
			pdf.CellFormat(5.5, 0.3, imageCaptionLabel, "", 0, "CM", false, 0, "")
		}

		if slide.DiagramType.IsChart() {
			x, w := 0.5, 12.3
			if hasImage {
				x, w = 7.3, 5.5
			}
			drawBars(pdf, x, 5.8, w, 1.2, p.ChartPalette)
		}

		pdf.SetFont(font, "", 8)
		setText(pdf, colorMuted)
		pdf.SetXY(10.5, 7.2)
		pdf.CellFormat(2.5, 0.3, tr(fmt.Sprintf("%d | %s", i+1, deck.title)), "", 0, "RM", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func handoutFont(face string) string {
	switch face {
	case "Georgia":
		return "Times"
	case "Courier New":
		return "Courier"
	default:
		return "Arial"
	}
}

func hexRGB(hex string) (int, int, int) {
	v, err := strconv.ParseUint(SanitizeColor(hex, "000000"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

func setFill(pdf *gofpdf.Fpdf, hex string) { pdf.SetFillColor(hexRGB(hex)) }
func setDraw(pdf *gofpdf.Fpdf, hex string) { pdf.SetDrawColor(hexRGB(hex)) }
func setText(pdf *gofpdf.Fpdf, hex string) { pdf.SetTextColor(hexRGB(hex)) }

func fillPage(pdf *gofpdf.Fpdf, hex string) {
	setFill(pdf, hex)
	pdf.Rect(0, 0, pageWidthIn, pageHeightIn, "F")
}

// drawImage places img when the PDF writer supports its format; webp is
// skipped and leaves the container empty.
func drawImage(pdf *gofpdf.Fpdf, name string, img *domain.FetchedImage, x, y, w, h float64) {
	var imageType string
	switch img.Extension {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	case "gif":
		imageType = "GIF"
	default:
		return
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	if info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data)); info == nil {
		return
	}
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func drawBars(pdf *gofpdf.Fpdf, x, y, w, h float64, palette []string) {
	color := colorMuted
	if len(palette) > 0 {
		color = palette[0]
	}
	maxVal := 0.0
	for _, v := range chartValues {
		if v > maxVal {
			maxVal = v
		}
	}
	labelH := 0.2
	slot := w / float64(len(chartValues))
	barW := slot * 0.6

	setFill(pdf, color)
	for i, v := range chartValues {
		barH := (h - labelH) * v / maxVal
		bx := x + float64(i)*slot + (slot-barW)/2
		pdf.Rect(bx, y+(h-labelH)-barH, barW, barH, "F")
	}
	pdf.SetFont("Arial", "", 7)
	setText(pdf, colorCaption)
	for i, label := range chartCategories {
		pdf.SetXY(x+float64(i)*slot, y+h-labelH)
		pdf.CellFormat(slot, labelH, label, "", 0, "CM", false, 0, "")
	}
}
