package pickscan

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns raw image bytes into positioned text blocks. Implementations
// may hold native resources; the constructor acquires them and Close releases
// them, so the host wires one in at startup and tears it down on shutdown.
type Recognizer interface {
	Recognize(img []byte) ([]TextBlock, error)
	Close() error
}

// TesseractRecognizer performs word-level detection with gosseract. A
// tesseract client is not safe for concurrent use, so calls are serialized.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseractRecognizer() *TesseractRecognizer {
	client := gosseract.NewClient()
	_ = client.SetLanguage("eng")
	return &TesseractRecognizer{client: client}
}

func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}

func (r *TesseractRecognizer) Recognize(img []byte) ([]TextBlock, error) {
	prepared, err := prepareForOCR(img)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}
	return groupBoxes(boxes), nil
}

// prepareForOCR applies geometry-preserving cleanup only: grayscale,
// contrast, sharpen. Resizing or cropping would move the word boxes out of
// the click's pixel space.
func prepareForOCR(img []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	gray := imaging.Grayscale(src)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// groupBoxes rebuilds the block -> line -> element nesting from tesseract's
// verbose word boxes. Line numbers reset per paragraph, so the paragraph
// number participates in the line change test.
func groupBoxes(boxes []gosseract.BoundingBox) []TextBlock {
	var blocks []TextBlock
	curBlock, curPar, curLine := -1, -1, -1
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		if b.BlockNum != curBlock {
			blocks = append(blocks, TextBlock{})
			curBlock = b.BlockNum
			curPar, curLine = -1, -1
		}
		blk := &blocks[len(blocks)-1]
		if b.ParNum != curPar || b.LineNum != curLine {
			blk.Lines = append(blk.Lines, TextLine{})
			curPar, curLine = b.ParNum, b.LineNum
		}
		ln := &blk.Lines[len(blk.Lines)-1]
		ln.Elements = append(ln.Elements, TextElement{Text: word, Box: b.Box})
	}
	return blocks
}
