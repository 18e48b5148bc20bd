package supernote

import (
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/stanislawkuich/supernote-tool/internal/logging"
)

// Signatures identifying the two known device generations.
const (
	signatureBase    = "SN_FILE_ASA_20190529"
	signatureXSeries = "noteSN_FILE_VER_20200001"
)

const (
	keyPage        = "PAGE"
	keyData        = "DATA"
	keyLayerBitmap = "LAYERBITMAP"
)

// layerKeys is the fixed priority order in which a page's layer blocks
// are decoded. The main layer always comes first.
var layerKeys = []string{"MAINLAYER", "LAYER1", "LAYER2", "LAYER3", "BGLAYER"}

// Metadata is the parsed parameter tree of one container file.
// It is populated once by ParseMetadata and not modified afterwards.
type Metadata struct {
	Signature string
	Header    Params
	Footer    Params
	Pages     []PageInfo
}

// TotalPages returns the number of pages the container describes.
func (m *Metadata) TotalPages() int {
	return len(m.Pages)
}

// PageInfo holds the parameters of one page block. For X-series files
// it also holds the decoded layer blocks, in layer priority order.
type PageInfo struct {
	Params
	Layers []Params
}

// HasLayers tells if the page stores its bitmaps in layer blocks.
func (p *PageInfo) HasLayers() bool {
	return len(p.Layers) > 0
}

// variant captures what differs between the device generations:
// the file signature, how page addresses are listed in the footer
// and how a single page block is parsed.
type variant interface {
	signature() string
	pageAddresses(footer Params) ([]int64, error)
	parsePageBlock(r io.ReadSeeker, address int64) (PageInfo, error)
}

// variants in detection order.
var variants = []variant{baseVariant{}, xseriesVariant{}}

// ParseMetadata detects the container format of r and parses the full
// metadata tree. Variants are tried in a fixed order against a fresh
// read of the file; only a signature mismatch moves on to the next
// variant, any failure past the signature check is returned as is.
func ParseMetadata(r io.ReadSeeker) (*Metadata, error) {
	for _, v := range variants {
		m, err := parseWith(r, v)
		if err == nil {
			return m, nil
		}
		if !IsUnsupportedFormat(err) {
			return nil, err
		}
		logging.Debug("signature %q did not match: %v", v.signature(), err)
	}
	return nil, NewUnsupportedFormat("no parser recognized this file")
}

// ParseMetadataFile opens the container file at path and parses it.
func ParseMetadataFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseMetadata(f)
}

// parseWith runs the linear parse sequence for one variant:
// signature, header, footer address, footer, page blocks.
func parseWith(r io.ReadSeeker, v variant) (*Metadata, error) {
	sig := v.signature()
	err := checkSignature(r, sig)
	if err != nil {
		return nil, err
	}

	// The header block sits immediately after the signature.
	header, err := decodeBlock(r, int64(len(sig)))
	if err != nil {
		return nil, Wrap(err, "failed to decode header")
	}

	footerAddress, err := readFooterAddress(r)
	if err != nil {
		return nil, err
	}
	footer, err := decodeBlock(r, footerAddress)
	if err != nil {
		return nil, Wrap(err, "failed to decode footer at address %v", footerAddress)
	}

	addresses, err := v.pageAddresses(footer)
	if err != nil {
		return nil, err
	}
	pages := make([]PageInfo, len(addresses))
	for i, address := range addresses {
		p, err := v.parsePageBlock(r, address)
		if err != nil {
			return nil, Wrap(err, "failed to parse page %v at address %v", i, address)
		}
		pages[i] = p
	}

	logging.Debug("parsed %q container with %v page(s)", sig, len(pages))
	return &Metadata{
		Signature: sig,
		Header:    header,
		Footer:    footer,
		Pages:     pages,
	}, nil
}

// checkSignature verifies that the file starts with the given signature.
// The position is reset to the file start first, so a failed attempt
// with one variant never skews the next attempt's read.
func checkSignature(r io.ReadSeeker, signature string) error {
	_, err := r.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}

	buf := make([]byte, len(signature))
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return NewUnsupportedFormat("file too short for signature")
	}
	if !utf8.Valid(buf) {
		return NewUnsupportedFormat("signature is expected as text")
	}
	if got := string(buf); got != signature {
		return NewUnsupportedFormat("unknown signature: %q", got)
	}

	return nil
}

// baseVariant parses containers from the original device generation.
// Pages carry their bitmap address directly in the DATA parameter.
type baseVariant struct{}

func (baseVariant) signature() string {
	return signatureBase
}

// pageAddresses returns the addresses stored under the footer's PAGE
// key, one per occurrence, in order.
func (baseVariant) pageAddresses(footer Params) ([]int64, error) {
	v, ok := footer.Get(keyPage)
	if !ok {
		return nil, NewMalformedContainer("footer has no %v key", keyPage)
	}
	return v.Ints()
}

func (baseVariant) parsePageBlock(r io.ReadSeeker, address int64) (PageInfo, error) {
	params, err := decodeBlock(r, address)
	if err != nil {
		return PageInfo{}, err
	}
	return PageInfo{Params: params}, nil
}

// xseriesVariant parses containers from the X-series generation, which
// numbers its footer page keys (PAGE1, PAGE2, ...) and splits each page
// into up to five layer blocks.
type xseriesVariant struct{}

func (xseriesVariant) signature() string {
	return signatureXSeries
}

// pageAddresses returns the address of every footer key prefixed with
// PAGE, in footer order.
func (xseriesVariant) pageAddresses(footer Params) ([]int64, error) {
	var addresses []int64
	for _, key := range footer.Keys() {
		if !strings.HasPrefix(key, keyPage) {
			continue
		}
		v, _ := footer.Get(key)
		addrs, err := v.Ints()
		if err != nil {
			return nil, Wrap(err, "footer key %v", key)
		}
		addresses = append(addresses, addrs...)
	}
	return addresses, nil
}

func (xseriesVariant) parsePageBlock(r io.ReadSeeker, address int64) (PageInfo, error) {
	params, err := decodeBlock(r, address)
	if err != nil {
		return PageInfo{}, err
	}

	page := PageInfo{Params: params}
	for _, key := range layerKeys {
		v, ok := params.Get(key)
		if !ok {
			continue
		}
		layerAddress, err := v.Int()
		if err != nil {
			return PageInfo{}, Wrap(err, "layer key %v", key)
		}
		layer, err := decodeBlock(r, layerAddress)
		if err != nil {
			return PageInfo{}, Wrap(err, "failed to decode layer %v at address %v", key, layerAddress)
		}
		page.Layers = append(page.Layers, layer)
	}

	return page, nil
}
