package source

import (
	"archive/zip"
	"encoding/xml"
	"image"
	"image/png"
	"strconv"

	nserr "github.com/namesheet/namesplit/pkg/errors"
)

// OpenRaster container layout: a zip archive holding stack.xml (the
// group/layer tree) plus one PNG per layer. Only reading is supported.

type oraImage struct {
	XMLName xml.Name `xml:"image"`
	W       int      `xml:"w,attr"`
	H       int      `xml:"h,attr"`
	Stack   oraStack `xml:"stack"`
}

type oraStack struct {
	Name       string     `xml:"name,attr"`
	Visibility string     `xml:"visibility,attr"`
	Children   []oraChild `xml:",any"`
}

// oraChild is either a nested <stack> (group) or a <layer>. The element
// name decides which fields are meaningful.
type oraChild struct {
	XMLName    xml.Name
	Name       string     `xml:"name,attr"`
	Src        string     `xml:"src,attr"`
	X          int        `xml:"x,attr"`
	Y          int        `xml:"y,attr"`
	Visibility string     `xml:"visibility,attr"`
	Opacity    string     `xml:"opacity,attr"`
	Children   []oraChild `xml:",any"`
}

type oraSource struct {
	width  int
	height int
	layers []LayerRecord
}

// OpenORA reads a layered OpenRaster (.ora) document. The layer tree is
// flattened to records in document order (topmost first), each carrying
// its ancestor group path. Layers inside an invisible group inherit the
// hidden state.
func OpenORA(path string) (Source, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to open ora container: %s", path)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	stackFile, ok := entries["stack.xml"]
	if !ok {
		return nil, nserr.New(nserr.ErrCodeImageRead, "ora container missing stack.xml: %s", path)
	}
	rc, err := stackFile.Open()
	if err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to read stack.xml: %s", path)
	}
	var doc oraImage
	decodeErr := xml.NewDecoder(rc).Decode(&doc)
	rc.Close()
	if decodeErr != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, decodeErr, "malformed stack.xml: %s", path)
	}
	if doc.W <= 0 || doc.H <= 0 {
		return nil, nserr.New(nserr.ErrCodeImageRead, "ora canvas size %dx%d is invalid: %s", doc.W, doc.H, path)
	}

	src := &oraSource{width: doc.W, height: doc.H}
	rootVisible := doc.Stack.Visibility != "hidden"
	for _, child := range doc.Stack.Children {
		if err := src.walk(child, nil, rootVisible, entries); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// walk flattens one tree node, carrying the ancestor group path and the
// effective visibility down to leaf layers.
func (s *oraSource) walk(node oraChild, groupPath []string, parentVisible bool, entries map[string]*zip.File) error {
	visible := parentVisible && node.Visibility != "hidden"

	if node.XMLName.Local == "stack" {
		childPath := append(append([]string(nil), groupPath...), node.Name)
		for _, child := range node.Children {
			if err := s.walk(child, childPath, visible, entries); err != nil {
				return err
			}
		}
		return nil
	}
	if node.XMLName.Local != "layer" {
		// Unknown elements (text, filters) are skipped, not an error.
		return nil
	}

	img, err := decodeLayerPNG(entries, node.Src)
	if err != nil {
		return err
	}

	opacity := 1.0
	if node.Opacity != "" {
		if v, err := strconv.ParseFloat(node.Opacity, 64); err == nil && v >= 0 && v <= 1 {
			opacity = v
		}
	}

	s.layers = append(s.layers, LayerRecord{
		Name:      node.Name,
		GroupPath: append([]string(nil), groupPath...),
		Visible:   visible,
		Image:     img,
		Offset:    image.Pt(node.X, node.Y),
		Opacity:   opacity,
	})
	return nil
}

func decodeLayerPNG(entries map[string]*zip.File, src string) (image.Image, error) {
	f, ok := entries[src]
	if !ok {
		return nil, nserr.New(nserr.ErrCodeImageRead, "ora layer data missing: %s", src)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to open ora layer: %s", src)
	}
	defer rc.Close()

	img, err := png.Decode(rc)
	if err != nil {
		return nil, nserr.Wrap(nserr.ErrCodeImageRead, err, "failed to decode ora layer: %s", src)
	}
	return img, nil
}

func (s *oraSource) Bounds() (int, int) { return s.width, s.height }

func (s *oraSource) Layers() []LayerRecord { return s.layers }

func (s *oraSource) Flat() bool { return false }

func (s *oraSource) Close() error {
	s.layers = nil
	return nil
}
