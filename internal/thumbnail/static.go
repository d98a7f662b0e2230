package thumbnail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// DefaultIcon is shown for extensions without a dedicated icon.
const DefaultIcon = "file"

var knownIcons = map[string]bool{
	"csv": true, "doc": true, "docx": true, "mp3": true, "mp4": true,
	"odt": true, "pdf": true, "ppt": true, "pptx": true, "txt": true,
	"xls": true, "xlsx": true, "zip": true,
}

// Static shows a fixed icon per file extension. It is used for providers
// that keep non-image files and never produce derivatives. Private URLs
// exist only for the reference format, which resolves to the stored file;
// every other format fails with Unsupported.
type Static struct {
	iconBaseURL string
}

func NewStatic(iconBaseURL string) *Static {
	return &Static{iconBaseURL: strings.TrimRight(iconBaseURL, "/")}
}

func (t *Static) GeneratePublicURL(p Provider, media domain.Media, format string) (string, error) {
	if format == domain.FormatReference {
		ref, err := p.ReferenceFile(media)
		if err != nil {
			return "", err
		}
		return ref.Key(), nil
	}

	icon := media.Extension()
	if !knownIcons[icon] {
		icon = DefaultIcon
	}
	return fmt.Sprintf("%s/%s.png", t.iconBaseURL, icon), nil
}

func (t *Static) GeneratePrivateURL(p Provider, media domain.Media, format string) (string, error) {
	if format != domain.FormatReference {
		return "", domain.Unsupported("thumbnail.static.private_url",
			fmt.Sprintf("format %q has no private file", format))
	}
	ref, err := p.ReferenceFile(media)
	if err != nil {
		return "", err
	}
	return ref.Key(), nil
}

func (t *Static) Generate(context.Context, Provider, domain.Media) error {
	return nil
}

func (t *Static) Delete(context.Context, Provider, domain.Media, ...string) error {
	return nil
}

func (t *Static) CanGenerate() bool {
	return false
}
