package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"sort"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/maheshrc27/clipcast/internal/models"
	"github.com/maheshrc27/clipcast/internal/workspace"
)

const (
	imageFieldPrefix = "image"
	jpegQuality      = 90
)

// ImageAsset is one raw upload keyed by its multipart field name.
type ImageAsset struct {
	FieldName string
	Data      []byte
}

type FrameService interface {
	CollectAssets(form *multipart.Form) ([]ImageAsset, error)
	Normalize(assets []ImageAsset, ws *workspace.Workspace) ([]models.Frame, error)
}

type frameService struct{}

func NewFrameService() FrameService {
	return &frameService{}
}

// CollectAssets gathers every multipart field whose name starts with "image"
// and orders the result by ascending lexicographic field name. Upload order is
// irrelevant: frame N always derives from the Nth field by sorted name.
func (s *frameService) CollectAssets(form *multipart.Form) ([]ImageAsset, error) {
	if form == nil {
		return nil, ErrNoImages
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		if strings.HasPrefix(name, imageFieldPrefix) && len(form.File[name]) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoImages
	}
	sort.Strings(names)

	assets := make([]ImageAsset, 0, len(names))
	for _, name := range names {
		data, err := readFileHeader(form.File[name][0])
		if err != nil {
			return nil, fmt.Errorf("error reading upload %s: %w", name, err)
		}
		assets = append(assets, ImageAsset{FieldName: name, Data: data})
	}

	return assets, nil
}

// Normalize converts every asset to a canonical JPEG frame in the workspace.
// The sequence index equals the asset's position in the (already sorted)
// slice, so the ffmpeg input pattern picks frames up in the right order.
func (s *frameService) Normalize(assets []ImageAsset, ws *workspace.Workspace) ([]models.Frame, error) {
	if len(assets) == 0 {
		return nil, ErrNoImages
	}

	frames := make([]models.Frame, 0, len(assets))
	for i, asset := range assets {
		if err := sniffImage(asset.Data); err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrDecode, asset.FieldName, err)
		}

		img, format, err := image.Decode(bytes.NewReader(asset.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrDecode, asset.FieldName, err)
		}

		path := ws.FramePath(i)
		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("error creating frame file: %w", err)
		}

		if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			out.Close()
			return nil, fmt.Errorf("error encoding frame %d: %w", i, err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("error writing frame %d: %w", i, err)
		}

		slog.Info("normalized frame", "index", i, "field", asset.FieldName, "source_format", format)
		frames = append(frames, models.Frame{Index: i, FieldName: asset.FieldName, Path: path})
	}

	return frames, nil
}

// sniffImage rejects buffers whose magic bytes are not a known raster type
// before handing them to the decoders.
func sniffImage(data []byte) error {
	kind, err := filetype.Match(data)
	if err != nil {
		return err
	}
	switch kind {
	case matchers.TypeJpeg, matchers.TypePng, matchers.TypeGif, matchers.TypeWebp, matchers.TypeBmp:
		return nil
	default:
		return fmt.Errorf("unsupported file type %q", kind.Extension)
	}
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
