package supernote

import (
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/stanislawkuich/supernote-tool/internal/logging"
)

// Notebook is the runtime view of one parsed container file.
// It owns one Page per metadata page, in file order.
type Notebook struct {
	Meta  *Metadata
	Pages []*Page
}

func newNotebook(meta *Metadata) *Notebook {
	pages := make([]*Page, meta.TotalPages())
	for i := range pages {
		pages[i] = &Page{Info: &meta.Pages[i]}
	}
	return &Notebook{Meta: meta, Pages: pages}
}

// Page is one page of a notebook. Data holds the raw bitmap payload of
// the page's main layer, still in the device's compressed encoding.
// Data is nil if the page stores no bitmap.
type Page struct {
	Info *PageInfo
	Data []byte
}

// HasData tells if a bitmap payload was stored for this page.
// A present but empty payload counts as data.
func (p *Page) HasData() bool {
	return p.Data != nil
}

// LoadNotebook builds a Notebook from already parsed metadata, reading
// each page's bitmap payload from r. The page count is fixed by the
// metadata and never re-derived from the file.
func LoadNotebook(r io.ReadSeeker, meta *Metadata) (*Notebook, error) {
	n := newNotebook(meta)
	for i, p := range n.Pages {
		address, err := bitmapAddress(meta, i)
		if err != nil {
			return nil, err
		}
		if address == 0 {
			continue
		}

		data, err := readBlock(r, address)
		if err != nil {
			return nil, Wrap(err, "failed to read bitmap for page %v", i)
		}
		p.Data = data
		logging.Debug("page %v: %v byte bitmap at address %v", i, len(data), address)
	}
	return n, nil
}

// LoadNotebookFile opens the container file at path, parses its
// metadata and loads all page payloads.
func LoadNotebookFile(path string) (*Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := ParseMetadata(f)
	if err != nil {
		return nil, err
	}

	logging.Info("loading %v page(s) from %q", meta.TotalPages(), path)
	return LoadNotebook(f, meta)
}

// LoadNotebookFiles loads several container files concurrently, each
// with its own file handle. The result order matches the path order.
func LoadNotebookFiles(paths ...string) ([]*Notebook, error) {
	notebooks := make([]*Notebook, len(paths))

	var group errgroup.Group
	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			n, err := LoadNotebookFile(path)
			if err != nil {
				return Wrap(err, "failed to load %q", path)
			}
			notebooks[i] = n
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return notebooks, nil
}

// bitmapAddress resolves which stored address holds the main bitmap of
// the given page. Pages with layer blocks use the first layer's
// LAYERBITMAP parameter, pages without use the DATA parameter directly.
func bitmapAddress(meta *Metadata, pageNumber int) (int64, error) {
	page := &meta.Pages[pageNumber]
	if page.HasLayers() {
		// currently only the MAIN layer bitmap is extracted
		v, ok := page.Layers[0].Get(keyLayerBitmap)
		if !ok {
			return 0, NewMalformedContainer("page %v: main layer has no %v key", pageNumber, keyLayerBitmap)
		}
		return v.Int()
	}

	v, ok := page.Get(keyData)
	if !ok {
		return 0, NewMalformedContainer("page %v has no %v key", pageNumber, keyData)
	}
	return v.Int()
}
