package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"pdf-slide-synth/internal/domain"
)

const (
	slideWidthEMU  = 12192000
	slideHeightEMU = 6858000
	emuPerInch     = 914400

	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsC   = "http://schemas.openxmlformats.org/drawingml/2006/chart"
	nsPkg = "http://schemas.openxmlformats.org/package/2006/relationships"

	relSlide       = nsR + "/slide"
	relSlideMaster = nsR + "/slideMaster"
	relSlideLayout = nsR + "/slideLayout"
	relTheme       = nsR + "/theme"
	relImage       = nsR + "/image"
	relChart       = nsR + "/chart"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`
)

// pptxDeck is everything needed to write one presentation package.
type pptxDeck struct {
	theme       domain.Theme
	preset      ThemePreset
	title       string
	sourceTitle string
	slides      []domain.SlideRecord
	assets      deckAssets
	created     time.Time
}

// slidePart is a serialized slide with its relationships and side parts.
type slidePart struct {
	xml   string
	rels  []relationship
	media *mediaPart
	chart *chartPart
}

type relationship struct {
	id     string
	typ    string
	target string
}

type mediaPart struct {
	name string
	data []byte
}

type chartPart struct {
	name string
	xml  string
}

func emu(inches float64) int64 {
	return int64(math.Round(inches * emuPerInch))
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// buildPPTX writes a complete presentation package with one cover slide
// followed by one slide per record.
func buildPPTX(deck pptxDeck) ([]byte, error) {
	parts := make([]slidePart, 0, len(deck.slides)+1)
	parts = append(parts, coverSlide(deck))
	for i := range deck.slides {
		parts = append(parts, contentSlide(deck, i))
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	var charts []string
	for _, p := range parts {
		if p.chart != nil {
			charts = append(charts, p.chart.name)
		}
	}

	static := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(len(parts), charts)},
		{"_rels/.rels", rootRelsXML()},
		{"docProps/core.xml", corePropsXML(deck.title, deck.created)},
		{"docProps/app.xml", appPropsXML(len(parts))},
		{"ppt/presentation.xml", presentationXML(len(parts))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(parts))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML()},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML([]relationship{
			{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
			{"rId2", relTheme, "../theme/theme1.xml"},
		})},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML()},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML([]relationship{
			{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"},
		})},
		{"ppt/theme/theme1.xml", themeXML(deck.preset)},
	}
	for _, f := range static {
		if err := writeZipTextFile(writer, f.name, f.content); err != nil {
			_ = writer.Close()
			return nil, err
		}
	}

	for i, p := range parts {
		n := i + 1
		if err := writeZipTextFile(writer, fmt.Sprintf("ppt/slides/slide%d.xml", n), p.xml); err != nil {
			_ = writer.Close()
			return nil, err
		}
		if err := writeZipTextFile(writer, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(p.rels)); err != nil {
			_ = writer.Close()
			return nil, err
		}
		if p.media != nil {
			if err := writeZipBytes(writer, p.media.name, p.media.data); err != nil {
				_ = writer.Close()
				return nil, err
			}
		}
		if p.chart != nil {
			if err := writeZipTextFile(writer, p.chart.name, p.chart.xml); err != nil {
				_ = writer.Close()
				return nil, err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeZipTextFile(writer *zip.Writer, name string, content string) error {
	w, err := writer.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

func writeZipBytes(writer *zip.Writer, name string, payload []byte) error {
	w, err := writer.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

func contentTypesXML(slideCount int, charts []string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, ext := range []string{"png", "jpeg", "gif", "webp"} {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, ext, imageContentType(ext))
	}
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	for _, name := range charts {
		fmt.Fprintf(&b, `<Override PartName="/%s" ContentType="application/vnd.openxmlformats-officedocument.drawingml.chart+xml"/>`, name)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func rootRelsXML() string {
	return xmlHeader +
		`<Relationships xmlns="` + nsPkg + `">` +
		`<Relationship Id="rId1" Type="` + nsR + `/officeDocument" Target="ppt/presentation.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`<Relationship Id="rId3" Type="` + nsR + `/extended-properties" Target="docProps/app.xml"/>` +
		`</Relationships>`
}

func relsXML(rels []relationship) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="` + nsPkg + `">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func corePropsXML(title string, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + xmlEscape(title) + `</dc:title>` +
		`<dc:creator>slide-synth</dc:creator>` +
		`<cp:lastModifiedBy>slide-synth</cp:lastModifiedBy>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appPropsXML(slideCount int) string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>slide-synth</Application>` +
		`<PresentationFormat>Widescreen</PresentationFormat>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, slideCount) +
		`<Notes>0</Notes><HiddenSlides>0</HiddenSlides>` +
		`<AppVersion>16.0000</AppVersion>` +
		`</Properties>`
}

// presentation.xml.rels reserves rId1 for the master and rId2 for the theme;
// slides follow from rId3.
func presentationXML(slideCount int) string {
	var ids strings.Builder
	ids.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slideCount; i++ {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 3+i)
	}
	ids.WriteString(`</p:sldIdLst>`)

	return xmlHeader +
		`<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" saveSubsetFonts="1">` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
		ids.String() +
		fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/>`, slideWidthEMU, slideHeightEMU) +
		`<p:notesSz cx="6858000" cy="9144000"/>` +
		`<p:defaultTextStyle/>` +
		`</p:presentation>`
}

func presentationRelsXML(slideCount int) string {
	rels := []relationship{
		{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"},
		{"rId2", relTheme, "theme/theme1.xml"},
	}
	for i := 0; i < slideCount; i++ {
		rels = append(rels, relationship{fmt.Sprintf("rId%d", 3+i), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	return relsXML(rels)
}

func emptySpTree() string {
	return `<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr></p:spTree>`
}

func slideMasterXML() string {
	return xmlHeader +
		`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` + emptySpTree() + `</p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
		`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
		`</p:sldMaster>`
}

func slideLayoutXML() string {
	return xmlHeader +
		`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
		`<p:cSld name="Blank">` + emptySpTree() + `</p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sldLayout>`
}

// themeXML maps the preset onto the theme color and font schemes so that
// slides inheriting scheme colors still match the deck.
func themeXML(p ThemePreset) string {
	clr := func(name, hex string) string {
		return fmt.Sprintf(`<a:%s><a:srgbClr val="%s"/></a:%s>`, name, hex, name)
	}
	palette := append(append([]string(nil), p.ChartPalette...), "64748B", "94A3B8", "CBD5E1")

	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<a:theme xmlns:a="` + nsA + `" name="Slide Synth">`)
	b.WriteString(`<a:themeElements>`)
	b.WriteString(`<a:clrScheme name="Slide Synth">`)
	b.WriteString(clr("dk1", p.Text))
	b.WriteString(clr("lt1", p.Secondary))
	b.WriteString(clr("dk2", p.Primary))
	b.WriteString(clr("lt2", colorImageFill))
	b.WriteString(clr("accent1", p.Accent))
	for i := 0; i < 5; i++ {
		b.WriteString(clr(fmt.Sprintf("accent%d", i+2), palette[i]))
	}
	b.WriteString(clr("hlink", p.Accent))
	b.WriteString(clr("folHlink", p.Primary))
	b.WriteString(`</a:clrScheme>`)

	font := xmlEscape(p.Font)
	b.WriteString(`<a:fontScheme name="Slide Synth">`)
	fmt.Fprintf(&b, `<a:majorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>`, font)
	fmt.Fprintf(&b, `<a:minorFont><a:latin typeface="%s"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>`, font)
	b.WriteString(`</a:fontScheme>`)

	solid := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	b.WriteString(`<a:fmtScheme name="Slide Synth">`)
	b.WriteString(`<a:fillStyleLst>` + strings.Repeat(solid, 3) + `</a:fillStyleLst>`)
	b.WriteString(`<a:lnStyleLst>`)
	for _, w := range []int{6350, 12700, 19050} {
		fmt.Fprintf(&b, `<a:ln w="%d">%s</a:ln>`, w, solid)
	}
	b.WriteString(`</a:lnStyleLst>`)
	b.WriteString(`<a:effectStyleLst>` + strings.Repeat(`<a:effectStyle><a:effectLst/></a:effectStyle>`, 3) + `</a:effectStyleLst>`)
	b.WriteString(`<a:bgFillStyleLst>` + strings.Repeat(solid, 3) + `</a:bgFillStyleLst>`)
	b.WriteString(`</a:fmtScheme>`)
	b.WriteString(`</a:themeElements>`)
	b.WriteString(`<a:objectDefaults/><a:extraClrSchemeLst/>`)
	b.WriteString(`</a:theme>`)
	return b.String()
}
