package epub

import (
	"encoding/xml"
	"path"
	"strings"

	"github.com/oudeis01/myLibrary-sub000/pkg/mediafile"
	"github.com/pkg/errors"
)

const containerEntryPath = "META-INF/container.xml"

// ErrNoPackageDocument means the container carried no usable package
// document: META-INF/container.xml was missing or malformed, or the package
// document it pointed at could not be read. Callers degrade to
// filename-derived metadata.
var ErrNoPackageDocument = errors.New("no package document found")

// fallback names probed at the archive root when the manifest declares no
// cover.
var conventionalCoverNames = []string{"cover.jpg", "cover.png", "cover.jpeg", "Cover.jpg", "Cover.png"}

type ocfContainer struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type Package struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text string `xml:",chardata"`
			Role string `xml:"role,attr"`
		} `xml:"creator"`
		Description string `xml:"description"`
		Publisher   string `xml:"publisher"`
		Language    string `xml:"language"`
		Identifier  []struct {
			Text   string `xml:",chardata"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Meta []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Item []struct {
			ID        string `xml:"id,attr"`
			Href      string `xml:"href,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// Parse extracts metadata and cover bytes from the EPUB at path. It returns
// ErrNoPackageDocument when the OCF structure is unusable; any failure past
// that point yields whatever metadata was already recovered.
func Parse(filePath string) (*mediafile.Metadata, error) {
	container, closer, err := OpenContainer(filePath)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return ParseContainer(container)
}

// ParseContainer runs the extraction over an already-open container.
func ParseContainer(container *Container) (*mediafile.Metadata, error) {
	opfPath, err := packageDocumentPath(container)
	if err != nil {
		return nil, err
	}

	opfData, err := container.ReadEntry(opfPath)
	if err != nil {
		return nil, errors.Wrap(ErrNoPackageDocument, opfPath)
	}

	pkg := &Package{}
	if err := xml.Unmarshal(opfData, pkg); err != nil {
		return nil, errors.Wrap(ErrNoPackageDocument, err.Error())
	}

	md := &mediafile.Metadata{
		Description: strings.TrimSpace(pkg.Metadata.Description),
		Publisher:   strings.TrimSpace(pkg.Metadata.Publisher),
		Language:    strings.TrimSpace(pkg.Metadata.Language),
	}

	if len(pkg.Metadata.Title) > 0 {
		md.Title = strings.TrimSpace(pkg.Metadata.Title[0].Text)
	}

	for _, creator := range pkg.Metadata.Creator {
		// Prefer an explicit author role, fall back to the first creator.
		if creator.Role == "aut" || md.Author == "" {
			md.Author = strings.TrimSpace(creator.Text)
		}
		if creator.Role == "aut" {
			break
		}
	}

	for _, id := range pkg.Metadata.Identifier {
		if strings.EqualFold(id.Scheme, "isbn") {
			md.ISBN = strings.TrimSpace(id.Text)
			break
		}
		if isbn, ok := strings.CutPrefix(strings.TrimSpace(id.Text), "urn:isbn:"); ok {
			md.ISBN = isbn
		}
	}

	// Cover failures are not errors; the metadata already recovered stands.
	readCover(container, pkg, opfPath, md)

	return md, nil
}

// packageDocumentPath reads META-INF/container.xml and returns the
// rootfile's full-path attribute.
func packageDocumentPath(container *Container) (string, error) {
	data, err := container.ReadEntry(containerEntryPath)
	if err != nil {
		return "", errors.Wrap(ErrNoPackageDocument, containerEntryPath+" missing")
	}

	ocf := &ocfContainer{}
	if err := xml.Unmarshal(data, ocf); err != nil {
		return "", errors.Wrap(ErrNoPackageDocument, err.Error())
	}

	for _, rootfile := range ocf.Rootfiles.Rootfile {
		if rootfile.FullPath != "" {
			return rootfile.FullPath, nil
		}
	}

	return "", errors.Wrap(ErrNoPackageDocument, "container.xml has no rootfile")
}

// readCover resolves the cover image in priority order: the manifest item
// referenced by meta[name=cover], then conventional filenames at the archive
// root. Absence of a cover is not an error.
func readCover(container *Container, pkg *Package, opfPath string, md *mediafile.Metadata) {
	coverPath := ""
	coverMimeType := ""

	coverID := ""
	for _, meta := range pkg.Metadata.Meta {
		if meta.Name == "cover" && meta.Content != "" {
			coverID = meta.Content
			break
		}
	}

	if coverID != "" {
		for _, item := range pkg.Manifest.Item {
			if item.ID == coverID {
				// hrefs are relative to the package document, not the
				// archive root.
				coverPath = resolveHref(opfPath, item.Href)
				coverMimeType = item.MediaType
				break
			}
		}
	}

	if coverPath == "" {
		for _, name := range conventionalCoverNames {
			if container.Exists(name) {
				coverPath = name
				coverMimeType = "image/jpeg"
				if strings.HasSuffix(strings.ToLower(name), ".png") {
					coverMimeType = "image/png"
				}
				break
			}
		}
	}

	if coverPath == "" {
		return
	}

	data, err := container.ReadEntry(coverPath)
	if err != nil {
		return
	}

	md.CoverData = data
	md.CoverMimeType = coverMimeType
}

func resolveHref(opfPath, href string) string {
	base := path.Dir(opfPath)
	if base == "." {
		return href
	}
	return path.Join(base, href)
}
