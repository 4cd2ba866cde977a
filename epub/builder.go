// Package epub packages article records into an EPUB 2 document. The
// builder stays at the interface boundary: it lays out the container,
// manifest and navigation, and passes article markup through untouched.
package epub

import (
	"archive/zip"
	"context"
	"fmt"
	"html"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/claudehenchoz/gensi"
	"github.com/google/uuid"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

var _ gensi.Builder = (*Builder)(nil)

// Builder writes EPUB 2 files.
type Builder struct{}

// NewBuilder returns an EPUB builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// manifestItem is one OPF manifest entry.
type manifestItem struct {
	id        string
	href      string
	mediaType string
	inSpine   bool
}

// Build writes the packaged document to outPath.
func (b *Builder) Build(ctx context.Context, in *gensi.BuildInput, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "create %s: %v", outPath, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	// The mimetype entry must come first and be stored uncompressed.
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "write mimetype: %v", err)
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "write mimetype: %v", err)
	}
	if err := writeEntry(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		return err
	}

	bookID := uuid.NewString()
	var items []manifestItem

	if in.Cover != nil {
		coverName := "cover" + coverExt(in.CoverExt)
		if err := writeEntry(zw, "OEBPS/"+coverName, in.Cover); err != nil {
			return err
		}
		items = append(items, manifestItem{id: "cover-image", href: coverName, mediaType: mediaTypeFor(coverName)})

		coverPage := coverXHTML(in.Title, coverName)
		if err := writeEntry(zw, "OEBPS/cover.xhtml", []byte(coverPage)); err != nil {
			return err
		}
		items = append(items, manifestItem{id: "cover-page", href: "cover.xhtml", mediaType: "application/xhtml+xml", inSpine: true})
	}

	type navEntry struct {
		title string
		href  string
	}
	var nav []navEntry

	// Image names are content-hashed, so a repeat across articles is
	// the same payload. Write and declare each one once.
	seenImages := make(map[string]bool)

	n := 0
	for _, section := range in.Sections {
		for _, article := range section.Articles {
			n++
			name := fmt.Sprintf("article-%03d.xhtml", n)
			if err := writeEntry(zw, "OEBPS/"+name, []byte(articleXHTML(article))); err != nil {
				return err
			}
			items = append(items, manifestItem{
				id: fmt.Sprintf("article-%03d", n), href: name,
				mediaType: "application/xhtml+xml", inSpine: true,
			})

			for imgName, payload := range article.Images {
				if seenImages[imgName] {
					continue
				}
				seenImages[imgName] = true
				entry := "images/" + imgName
				if err := writeEntry(zw, "OEBPS/"+entry, payload); err != nil {
					return err
				}
				items = append(items, manifestItem{
					id: "img-" + strings.TrimSuffix(imgName, path.Ext(imgName)), href: entry,
					mediaType: mediaTypeFor(imgName),
				})
			}

			title := article.Title
			if title == "" {
				title = article.URL
			}
			if section.Name != "" {
				title = section.Name + ": " + title
			}
			nav = append(nav, navEntry{title: title, href: name})
		}
	}

	opf := buildOPF(in, bookID, items)
	opfData, err := opf.WriteToBytes()
	if err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "serialize package document: %v", err)
	}
	if err := writeEntry(zw, "OEBPS/content.opf", opfData); err != nil {
		return err
	}

	ncx := etree.NewDocument()
	ncx.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := ncx.CreateElement("ncx")
	root.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	root.CreateAttr("version", "2005-1")
	head := root.CreateElement("head")
	addMeta := func(name, content string) {
		m := head.CreateElement("meta")
		m.CreateAttr("name", name)
		m.CreateAttr("content", content)
	}
	addMeta("dtb:uid", "urn:uuid:"+bookID)
	addMeta("dtb:depth", "1")
	addMeta("dtb:totalPageCount", "0")
	addMeta("dtb:maxPageNumber", "0")
	root.CreateElement("docTitle").CreateElement("text").SetText(in.Title)
	navMap := root.CreateElement("navMap")
	for i, entry := range nav {
		np := navMap.CreateElement("navPoint")
		np.CreateAttr("id", fmt.Sprintf("nav-%03d", i+1))
		np.CreateAttr("playOrder", fmt.Sprint(i+1))
		np.CreateElement("navLabel").CreateElement("text").SetText(entry.title)
		np.CreateElement("content").CreateAttr("src", entry.href)
	}
	ncx.Indent(2)
	ncxData, err := ncx.WriteToBytes()
	if err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "serialize navigation document: %v", err)
	}
	if err := writeEntry(zw, "OEBPS/toc.ncx", ncxData); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "finalize %s: %v", outPath, err)
	}
	return f.Close()
}

func buildOPF(in *gensi.BuildInput, bookID string, items []manifestItem) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("unique-identifier", "bookid")
	pkg.CreateAttr("version", "2.0")

	meta := pkg.CreateElement("metadata")
	meta.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	meta.CreateElement("dc:title").SetText(in.Title)
	if in.Author != "" {
		meta.CreateElement("dc:creator").SetText(in.Author)
	}
	lang := in.Language
	if lang == "" {
		lang = "en"
	}
	meta.CreateElement("dc:language").SetText(lang)
	ident := meta.CreateElement("dc:identifier")
	ident.CreateAttr("id", "bookid")
	ident.SetText("urn:uuid:" + bookID)
	if in.Cover != nil {
		cover := meta.CreateElement("meta")
		cover.CreateAttr("name", "cover")
		cover.CreateAttr("content", "cover-image")
	}

	manifest := pkg.CreateElement("manifest")
	ncxItem := manifest.CreateElement("item")
	ncxItem.CreateAttr("id", "ncx")
	ncxItem.CreateAttr("href", "toc.ncx")
	ncxItem.CreateAttr("media-type", "application/x-dtbncx+xml")
	for _, item := range items {
		el := manifest.CreateElement("item")
		el.CreateAttr("id", item.id)
		el.CreateAttr("href", item.href)
		el.CreateAttr("media-type", item.mediaType)
	}

	spine := pkg.CreateElement("spine")
	spine.CreateAttr("toc", "ncx")
	for _, item := range items {
		if !item.inSpine {
			continue
		}
		ref := spine.CreateElement("itemref")
		ref.CreateAttr("idref", item.id)
	}

	doc.Indent(2)
	return doc
}

func articleXHTML(article *gensi.ArticleRecord) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>`)
	sb.WriteString(html.EscapeString(article.Title))
	sb.WriteString("</title></head>\n<body>\n")
	if article.Title != "" {
		sb.WriteString("<h1>" + html.EscapeString(article.Title) + "</h1>\n")
	}
	var byline []string
	if article.Author != "" {
		byline = append(byline, html.EscapeString(article.Author))
	}
	if article.Date != "" {
		byline = append(byline, html.EscapeString(article.Date))
	}
	if len(byline) > 0 {
		sb.WriteString(`<p class="byline">` + strings.Join(byline, " · ") + "</p>\n")
	}
	// Article content references its images relative to the images/ dir.
	content := article.Content
	for name := range article.Images {
		content = strings.ReplaceAll(content, `src="`+name+`"`, `src="images/`+name+`"`)
	}
	sb.WriteString(content)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

func coverXHTML(title, coverName string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>%s</title></head>
<body><div style="text-align: center"><img src="%s" alt="cover"/></div></body>
</html>
`, html.EscapeString(title), coverName)
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "write %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return gensi.Errorf(gensi.EINTERNAL, "write %s: %v", name, err)
	}
	return nil
}

func coverExt(ext string) string {
	if ext == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		return "." + ext
	}
	return ext
}

func mediaTypeFor(name string) string {
	if mt := mime.TypeByExtension(path.Ext(name)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
