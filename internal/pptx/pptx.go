// Package pptx reads and writes PowerPoint (.pptx) packages.
//
// The package model is deliberately small: a presentation is a list of
// slides, and a slide is a list of positioned text boxes. That covers
// title, content and free-form text slides without pulling in the full
// DrawingML shape tree.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"
)

// EMUPerInch is the OOXML English Metric Unit scale.
const EMUPerInch = 914400

// TextBox is a rectangular text frame on a slide.
// Position and size are in inches. Text may contain newlines,
// each line becomes its own paragraph.
type TextBox struct {
	Text   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
	FontPt int // 0 uses the default size
}

// Slide is an ordered list of text boxes.
type Slide struct {
	Boxes []TextBox
}

// AddTextBox appends a text frame to the slide.
func (s *Slide) AddTextBox(box TextBox) {
	s.Boxes = append(s.Boxes, box)
}

// Text returns the text of each box on the slide, in order.
func (s *Slide) Text() []string {
	res := make([]string, 0, len(s.Boxes))
	for _, box := range s.Boxes {
		res = append(res, box.Text)
	}
	return res
}

// Presentation is an ordered list of slides.
type Presentation struct {
	Slides []*Slide
}

// New returns an empty presentation.
func New() *Presentation {
	return &Presentation{}
}

// AddSlide appends a blank slide and returns it.
func (p *Presentation) AddSlide() *Slide {
	s := &Slide{}
	p.Slides = append(p.Slides, s)
	return s
}

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}

// Open reads a .pptx file. Only text frames are retained; other shape
// types are dropped on a read-modify-write cycle.
func Open(path string) (*Presentation, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open presentation")
	}
	defer r.Close()

	type numbered struct {
		num  int
		file *zip.File
	}
	var slideFiles []numbered
	for _, f := range r.File {
		var num int
		if _, err := fmt.Sscanf(f.Name, "ppt/slides/slide%d.xml", &num); err == nil {
			slideFiles = append(slideFiles, numbered{num: num, file: f})
		}
	}
	sort.Slice(slideFiles, func(i, j int) bool { return slideFiles[i].num < slideFiles[j].num })

	p := New()
	for _, sf := range slideFiles {
		slide, err := parseSlide(sf.file)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to parse %s", sf.file.Name)
		}
		p.Slides = append(p.Slides, slide)
	}
	return p, nil
}

// SaveAs writes the presentation package to path.
func (p *Presentation) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create presentation file")
	}
	defer f.Close()

	w := zip.NewWriter(f)
	write := func(name string, data []byte) error {
		zf, err := w.Create(name)
		if err != nil {
			return errors.Wrapf(err, "failed to add %s", name)
		}
		if _, err := zf.Write(data); err != nil {
			return errors.Wrapf(err, "failed to write %s", name)
		}
		return nil
	}

	parts := [][2]string{
		{"[Content_Types].xml", contentTypesXML(len(p.Slides))},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", presentationXML(len(p.Slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(p.Slides))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for _, part := range parts {
		if err := write(part[0], []byte(part[1])); err != nil {
			return err
		}
	}

	for i, slide := range p.Slides {
		data, err := slideXML(slide)
		if err != nil {
			return err
		}
		if err := write(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), data); err != nil {
			return err
		}
		if err := write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), []byte(slideRelsXML)); err != nil {
			return err
		}
	}

	return errors.Wrap(w.Close(), "failed to finalize presentation file")
}

func parseSlide(f *zip.File) (*Slide, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, errors.WithStack(err)
	}

	slide := &Slide{}
	for _, sp := range doc.FindElements("//sp") {
		txBody := sp.FindElement("txBody")
		if txBody == nil {
			continue
		}
		box := TextBox{
			Left:   1,
			Top:    1,
			Width:  5,
			Height: 1,
		}
		if off := sp.FindElement("spPr/xfrm/off"); off != nil {
			box.Left = emuAttrToInches(off, "x", box.Left)
			box.Top = emuAttrToInches(off, "y", box.Top)
		}
		if ext := sp.FindElement("spPr/xfrm/ext"); ext != nil {
			box.Width = emuAttrToInches(ext, "cx", box.Width)
			box.Height = emuAttrToInches(ext, "cy", box.Height)
		}

		var lines []string
		for _, para := range txBody.SelectElements("p") {
			var sb strings.Builder
			for _, run := range para.SelectElements("r") {
				if box.FontPt == 0 {
					if rPr := run.SelectElement("rPr"); rPr != nil {
						if sz := rPr.SelectAttrValue("sz", ""); sz != "" {
							if v, err := strconv.Atoi(sz); err == nil {
								box.FontPt = v / 100
							}
						}
					}
				}
				if t := run.SelectElement("t"); t != nil {
					sb.WriteString(t.Text())
				}
			}
			lines = append(lines, sb.String())
		}
		box.Text = strings.Join(lines, "\n")
		slide.Boxes = append(slide.Boxes, box)
	}
	return slide, nil
}

func emuAttrToInches(el *etree.Element, name string, def float64) float64 {
	v, err := strconv.ParseInt(el.SelectAttrValue(name, ""), 10, 64)
	if err != nil {
		return def
	}
	return float64(v) / EMUPerInch
}

func inchesToEMU(v float64) string {
	return strconv.FormatInt(int64(v*EMUPerInch), 10)
}

const (
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

func slideXML(slide *Slide) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)

	sld := doc.CreateElement("p:sld")
	sld.CreateAttr("xmlns:a", nsDrawing)
	sld.CreateAttr("xmlns:p", nsPresentation)
	sld.CreateAttr("xmlns:r", nsRelationships)

	cSld := sld.CreateElement("p:cSld")
	spTree := cSld.CreateElement("p:spTree")

	nvGrpSpPr := spTree.CreateElement("p:nvGrpSpPr")
	cNvPr := nvGrpSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	nvGrpSpPr.CreateElement("p:cNvGrpSpPr")
	nvGrpSpPr.CreateElement("p:nvPr")

	grpSpPr := spTree.CreateElement("p:grpSpPr")
	xfrm := grpSpPr.CreateElement("a:xfrm")
	addPoint(xfrm, "a:off", "x", "0", "y", "0")
	addPoint(xfrm, "a:ext", "cx", "0", "cy", "0")
	addPoint(xfrm, "a:chOff", "x", "0", "y", "0")
	addPoint(xfrm, "a:chExt", "cx", "0", "cy", "0")

	for i, box := range slide.Boxes {
		addTextShape(spTree, i+2, box)
	}

	clrMapOvr := sld.CreateElement("p:clrMapOvr")
	clrMapOvr.CreateElement("a:masterClrMapping")

	doc.Indent(0)
	return doc.WriteToBytes()
}

func addPoint(parent *etree.Element, tag, k1, v1, k2, v2 string) {
	el := parent.CreateElement(tag)
	el.CreateAttr(k1, v1)
	el.CreateAttr(k2, v2)
}

func addTextShape(spTree *etree.Element, id int, box TextBox) {
	sp := spTree.CreateElement("p:sp")

	nvSpPr := sp.CreateElement("p:nvSpPr")
	cNvPr := nvSpPr.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", fmt.Sprintf("TextBox %d", id-1))
	cNvSpPr := nvSpPr.CreateElement("p:cNvSpPr")
	cNvSpPr.CreateAttr("txBox", "1")
	nvSpPr.CreateElement("p:nvPr")

	spPr := sp.CreateElement("p:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	addPoint(xfrm, "a:off", "x", inchesToEMU(box.Left), "y", inchesToEMU(box.Top))
	addPoint(xfrm, "a:ext", "cx", inchesToEMU(box.Width), "cy", inchesToEMU(box.Height))
	prstGeom := spPr.CreateElement("a:prstGeom")
	prstGeom.CreateAttr("prst", "rect")
	prstGeom.CreateElement("a:avLst")

	txBody := sp.CreateElement("p:txBody")
	bodyPr := txBody.CreateElement("a:bodyPr")
	bodyPr.CreateAttr("wrap", "square")
	txBody.CreateElement("a:lstStyle")

	for _, line := range strings.Split(box.Text, "\n") {
		para := txBody.CreateElement("a:p")
		run := para.CreateElement("a:r")
		rPr := run.CreateElement("a:rPr")
		rPr.CreateAttr("lang", "en-US")
		if box.FontPt > 0 {
			rPr.CreateAttr("sz", strconv.Itoa(box.FontPt*100))
		}
		t := run.CreateElement("a:t")
		t.SetText(line)
	}
}

func contentTypesXML(slideCount int) string {
	var sb bytes.Buffer
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
`, i)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`

func presentationXML(slideCount int) string {
	var sb bytes.Buffer
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="` + nsDrawing + `" xmlns:p="` + nsPresentation + `" xmlns:r="` + nsRelationships + `">
<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
<p:sldIdLst>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="rId%d"/>
`, 255+i, i+1)
	}
	sb.WriteString(`</p:sldIdLst>
<p:sldSz cx="12192000" cy="6858000"/>
<p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>`)
	return sb.String()
}

func presentationRelsXML(slideCount int) string {
	var sb bytes.Buffer
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>
`, i+1, i)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

const slideRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
</Relationships>`

const slideMasterXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="` + nsDrawing + `" xmlns:p="` + nsPresentation + `" xmlns:r="` + nsRelationships + `">
<p:cSld>
<p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
</p:spTree>
</p:cSld>
<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>
<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
</p:sldMaster>`

const slideMasterRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>
</Relationships>`

const slideLayoutXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="` + nsDrawing + `" xmlns:p="` + nsPresentation + `" xmlns:r="` + nsRelationships + `" type="blank">
<p:cSld name="Blank">
<p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
</p:spTree>
</p:cSld>
<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>`

const slideLayoutRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>`

const themeXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="` + nsDrawing + `" name="Office">
<a:themeElements>
<a:clrScheme name="Office">
<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>
<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>
<a:dk2><a:srgbClr val="44546A"/></a:dk2>
<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>
<a:accent1><a:srgbClr val="4472C4"/></a:accent1>
<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>
<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>
<a:accent4><a:srgbClr val="FFC000"/></a:accent4>
<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>
<a:accent6><a:srgbClr val="70AD47"/></a:accent6>
<a:hlink><a:srgbClr val="0563C1"/></a:hlink>
<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>
</a:clrScheme>
<a:fontScheme name="Office">
<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
</a:fontScheme>
<a:fmtScheme name="Office">
<a:fillStyleLst>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
</a:fillStyleLst>
<a:lnStyleLst>
<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
</a:lnStyleLst>
<a:effectStyleLst>
<a:effectStyle><a:effectLst/></a:effectStyle>
<a:effectStyle><a:effectLst/></a:effectStyle>
<a:effectStyle><a:effectLst/></a:effectStyle>
</a:effectStyleLst>
<a:bgFillStyleLst>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
</a:bgFillStyleLst>
</a:fmtScheme>
</a:themeElements>
</a:theme>`
