package service

import (
	"fmt"
	"strconv"
	"strings"

	"pdf-slide-synth/internal/domain"
)

// Widescreen page in inches.
const (
	pageWidthIn  = 13.333
	pageHeightIn = 7.5
)

// textRun is one run of styled text inside a paragraph.
type textRun struct {
	text    string
	sizePt  int
	color   string
	font    string
	bold    bool
	italic  bool
	spacing int
}

type paragraph struct {
	run         textRun
	align       string
	bullet      bool
	spaceBefore int
	lineSpacing int
}

type shapeBuilder struct {
	b      strings.Builder
	nextID int
}

func newShapeBuilder() *shapeBuilder {
	return &shapeBuilder{nextID: 2}
}

func (s *shapeBuilder) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func xfrm(x, y, w, h float64) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, emu(x), emu(y), emu(w), emu(h))
}

func solidFill(hex string) string {
	return `<a:solidFill><a:srgbClr val="` + hex + `"/></a:solidFill>`
}

func (s *shapeBuilder) rect(name string, x, y, w, h float64, fill, line string) {
	id := s.id()
	fmt.Fprintf(&s.b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, xmlEscape(name))
	s.b.WriteString(`<p:spPr>` + xfrm(x, y, w, h) + `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
	s.b.WriteString(solidFill(fill))
	if line != "" {
		s.b.WriteString(`<a:ln w="12700">` + solidFill(line) + `</a:ln>`)
	} else {
		s.b.WriteString(`<a:ln><a:noFill/></a:ln>`)
	}
	s.b.WriteString(`</p:spPr></p:sp>`)
}

func (s *shapeBuilder) text(name string, x, y, w, h float64, anchor string, paras []paragraph) {
	id := s.id()
	fmt.Fprintf(&s.b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, xmlEscape(name))
	s.b.WriteString(`<p:spPr>` + xfrm(x, y, w, h) + `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	fmt.Fprintf(&s.b, `<p:txBody><a:bodyPr wrap="square" lIns="91440" tIns="45720" rIns="91440" bIns="45720" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>`, anchor)
	for _, p := range paras {
		s.b.WriteString(paragraphXML(p))
	}
	s.b.WriteString(`</p:txBody></p:sp>`)
}

func paragraphXML(p paragraph) string {
	var b strings.Builder
	b.WriteString(`<a:p>`)

	attrs := ""
	if p.align != "" {
		attrs += ` algn="` + p.align + `"`
	}
	if p.bullet {
		attrs += ` marL="285750" indent="-285750"`
	}
	b.WriteString(`<a:pPr` + attrs + `>`)
	if p.lineSpacing > 0 {
		fmt.Fprintf(&b, `<a:lnSpc><a:spcPts val="%d"/></a:lnSpc>`, p.lineSpacing*100)
	}
	if p.spaceBefore > 0 {
		fmt.Fprintf(&b, `<a:spcBef><a:spcPts val="%d"/></a:spcBef>`, p.spaceBefore*100)
	}
	if p.bullet {
		b.WriteString(`<a:buFont typeface="Arial"/><a:buChar char="&#x2022;"/>`)
	} else {
		b.WriteString(`<a:buNone/>`)
	}
	b.WriteString(`</a:pPr>`)

	r := p.run
	b.WriteString(`<a:r><a:rPr lang="en-US"`)
	if r.sizePt > 0 {
		fmt.Fprintf(&b, ` sz="%d"`, r.sizePt*100)
	}
	if r.bold {
		b.WriteString(` b="1"`)
	}
	if r.italic {
		b.WriteString(` i="1"`)
	}
	if r.spacing != 0 {
		fmt.Fprintf(&b, ` spc="%d"`, r.spacing*100)
	}
	b.WriteString(` dirty="0">`)
	if r.color != "" {
		b.WriteString(solidFill(r.color))
	}
	if r.font != "" {
		b.WriteString(`<a:latin typeface="` + xmlEscape(r.font) + `"/>`)
	}
	b.WriteString(`</a:rPr><a:t>` + xmlEscape(r.text) + `</a:t></a:r>`)
	b.WriteString(`</a:p>`)
	return b.String()
}

// picture embeds an image relationship. alpha is opacity in percent.
func (s *shapeBuilder) picture(name, relID string, x, y, w, h float64, alpha int) {
	id := s.id()
	fmt.Fprintf(&s.b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id, xmlEscape(name))
	s.b.WriteString(`<p:blipFill><a:blip r:embed="` + relID + `">`)
	if alpha > 0 && alpha < 100 {
		fmt.Fprintf(&s.b, `<a:alphaModFix amt="%d"/>`, alpha*1000)
	}
	s.b.WriteString(`</a:blip><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	s.b.WriteString(`<p:spPr>` + xfrm(x, y, w, h) + `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)
}

func (s *shapeBuilder) chart(relID string, x, y, w, h float64) {
	id := s.id()
	fmt.Fprintf(&s.b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Chart %d"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>`, id, id)
	fmt.Fprintf(&s.b, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, emu(x), emu(y), emu(w), emu(h))
	s.b.WriteString(`<a:graphic><a:graphicData uri="` + nsC + `"><c:chart xmlns:c="` + nsC + `" r:id="` + relID + `"/></a:graphicData></a:graphic></p:graphicFrame>`)
}

func slideXML(background string, shapes string) string {
	return xmlHeader +
		`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:bg><p:bgPr>` + solidFill(background) + `<a:effectLst/></p:bgPr></p:bg>` +
		`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
		shapes +
		`</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sld>`
}

func layoutRel() relationship {
	return relationship{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"}
}

func coverSlide(deck pptxDeck) slidePart {
	p := deck.preset
	part := slidePart{rels: []relationship{layoutRel()}}
	s := newShapeBuilder()

	if p.AbstractCover && deck.assets.cover != nil {
		media := &mediaPart{name: "ppt/media/cover." + deck.assets.cover.Extension, data: deck.assets.cover.Data}
		part.media = media
		part.rels = append(part.rels, relationship{"rId2", relImage, "../media/" + strings.TrimPrefix(media.name, "ppt/media/")})
		s.picture("Cover Art", "rId2", 0, 0, pageWidthIn, pageHeightIn, 20)
	}
	if p.AccentBar {
		s.rect("Accent Bar", 0, 0, 0.5, pageHeightIn, p.Accent, "")
	}

	s.text("Title", 1.5, 2.5, pageWidthIn*0.8, 2, "ctr", []paragraph{{
		align: "l",
		run:   textRun{text: strings.ToUpper(ExportBaseName(deck.title)), sizePt: 48, bold: true, color: colorWhite, font: p.Font},
	}})
	s.text("Subtitle", 1.5, 5.8, pageWidthIn*0.8, 0.5, "t", []paragraph{{
		run: textRun{text: strings.ToUpper(string(deck.theme)) + " STRATEGY DECK", sizePt: 14, bold: true, color: colorMuted, font: p.Font, spacing: 10},
	}})

	part.xml = slideXML(p.Primary, s.b.String())
	return part
}

func contentSlide(deck pptxDeck, index int) slidePart {
	p := deck.preset
	slide := deck.slides[index]
	part := slidePart{rels: []relationship{layoutRel()}}
	s := newShapeBuilder()

	category := strings.ToUpper(strings.TrimSpace(slide.Category))
	if category == "" {
		category = strings.ToUpper(domain.DefaultSlideCategory)
	}
	s.text("Category", 0.5, 0.15, 3, 0.2, "t", []paragraph{{
		run: textRun{text: category, sizePt: 9, bold: true, color: p.Accent, font: p.Font},
	}})

	titleColor := p.Text
	if p.TitleInPrimary {
		titleColor = p.Primary
	}
	s.text("Slide Title", 0.5, 0.35, pageWidthIn*0.9, 0.8, "ctr", []paragraph{{
		run: textRun{text: slide.Title, sizePt: 24, bold: true, color: titleColor, font: p.Font},
	}})

	image := deck.assets.slideImage(index)
	hasImage := slide.HasImage() && image != nil

	textW, fontSize := 12.3, 14
	if hasImage {
		textW, fontSize = 6.5, 12
	}
	bullets := make([]paragraph, 0, len(slide.Bullets))
	for _, text := range slide.Bullets {
		bullets = append(bullets, paragraph{
			bullet:      true,
			spaceBefore: 8,
			lineSpacing: 22,
			run:         textRun{text: text, sizePt: fontSize, color: p.Text, font: p.Font},
		})
	}
	s.text("Bullets", 0.5, 1.3, textW, 5.5, "t", bullets)

	nextRel := 2
	if hasImage {
		relID := "rId" + strconv.Itoa(nextRel)
		nextRel++
		media := &mediaPart{name: fmt.Sprintf("ppt/media/image%d.%s", index+1, image.Extension), data: image.Data}
		part.media = media
		part.rels = append(part.rels, relationship{relID, relImage, "../media/" + strings.TrimPrefix(media.name, "ppt/media/")})

		s.rect("Visual Container", 7.3, 1.3, 5.5, 4.0, colorImageFill, colorImageLine)
		s.picture("Slide Visual", relID, 7.4, 1.4, 5.3, 3.8, 0)
		s.text("Caption", 7.3, 5.4, 5.5, 0.3, "t", []paragraph{{
			align: "ctr",
			run:   textRun{text: imageCaptionLabel, sizePt: 8, italic: true, color: colorCaption},
		}})
	}

	if slide.DiagramType.IsChart() {
		relID := "rId" + strconv.Itoa(nextRel)
		name := fmt.Sprintf("ppt/charts/chart%d.xml", index+1)
		part.chart = &chartPart{name: name, xml: chartXML(slide.DiagramType, p.ChartPalette)}
		part.rels = append(part.rels, relationship{relID, relChart, "../charts/" + strings.TrimPrefix(name, "ppt/charts/")})

		x, w := 0.5, 12.3
		if hasImage {
			x, w = 7.3, 5.5
		}
		s.chart(relID, x, 5.8, w, 1.2)
	}

	s.text("Footer", 10.5, 7.2, 2.5, 0.3, "t", []paragraph{{
		align: "r",
		run:   textRun{text: fmt.Sprintf("%d | %s", index+1, deck.sourceTitle), sizePt: 8, color: colorMuted},
	}})

	part.xml = slideXML(p.Secondary, s.b.String())
	return part
}

// chartXML renders the fixed illustrative series. Pie slides get a pie;
// every other chart type gets a column chart.
func chartXML(kind domain.DiagramType, palette []string) string {
	color := colorMuted
	if len(palette) > 0 {
		color = palette[0]
	}

	var cat, val strings.Builder
	fmt.Fprintf(&cat, `<c:cat><c:strLit><c:ptCount val="%d"/>`, len(chartCategories))
	for i, c := range chartCategories {
		fmt.Fprintf(&cat, `<c:pt idx="%d"><c:v>%s</c:v></c:pt>`, i, c)
	}
	cat.WriteString(`</c:strLit></c:cat>`)
	fmt.Fprintf(&val, `<c:val><c:numLit><c:formatCode>General</c:formatCode><c:ptCount val="%d"/>`, len(chartValues))
	for i, v := range chartValues {
		fmt.Fprintf(&val, `<c:pt idx="%d"><c:v>%s</c:v></c:pt>`, i, strconv.FormatFloat(v, 'f', -1, 64))
	}
	val.WriteString(`</c:numLit></c:val>`)

	serHead := `<c:ser><c:idx val="0"/><c:order val="0"/><c:tx><c:v>` + chartSeriesName + `</c:v></c:tx>`

	var plot string
	legend := ""
	if kind == domain.DiagramPieChart {
		var points strings.Builder
		for i := range chartValues {
			c := color
			if len(palette) > 0 {
				c = palette[i%len(palette)]
			}
			fmt.Fprintf(&points, `<c:dPt><c:idx val="%d"/><c:bubble3D val="0"/><c:spPr>%s</c:spPr></c:dPt>`, i, solidFill(c))
		}
		plot = `<c:pieChart><c:varyColors val="1"/>` + serHead + points.String() + cat.String() + val.String() + `</c:ser><c:firstSliceAng val="0"/></c:pieChart>`
		legend = `<c:legend><c:legendPos val="r"/><c:overlay val="0"/></c:legend>`
	} else {
		plot = `<c:barChart><c:barDir val="col"/><c:grouping val="clustered"/><c:varyColors val="0"/>` +
			serHead + `<c:spPr>` + solidFill(color) + `</c:spPr><c:invertIfNegative val="0"/>` + cat.String() + val.String() + `</c:ser>` +
			`<c:gapWidth val="150"/><c:axId val="500100"/><c:axId val="500200"/></c:barChart>` +
			`<c:catAx><c:axId val="500100"/><c:scaling><c:orientation val="minMax"/></c:scaling><c:delete val="0"/><c:axPos val="b"/><c:crossAx val="500200"/></c:catAx>` +
			`<c:valAx><c:axId val="500200"/><c:scaling><c:orientation val="minMax"/></c:scaling><c:delete val="0"/><c:axPos val="l"/><c:crossAx val="500100"/></c:valAx>`
	}

	return xmlHeader +
		`<c:chartSpace xmlns:c="` + nsC + `" xmlns:a="` + nsA + `" xmlns:r="` + nsR + `">` +
		`<c:roundedCorners val="0"/>` +
		`<c:chart><c:autoTitleDeleted val="1"/><c:plotArea><c:layout/>` + plot + `</c:plotArea>` + legend +
		`<c:plotVisOnly val="1"/></c:chart>` +
		`</c:chartSpace>`
}
