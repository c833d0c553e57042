package form

import (
	"context"
	"encoding/base64"
	"fmt"
	"formintake/core"
)

// Encoder turns a profile image into a self-contained portable string. This
// is the one asynchronous boundary in the submit transaction: the controller
// releases its lock while the encode runs.
type Encoder interface {
	Encode(ctx context.Context, img *core.ProfileImage) (string, error)
}

// DataURLEncoder encodes the image bytes as a base64 data URL, the same
// representation the records carry in profileUrl.
type DataURLEncoder struct{}

func (DataURLEncoder) Encode(ctx context.Context, img *core.ProfileImage) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to encode")
	}
	mime := img.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
}

// Clipboard receives the textual rendering of a copied record. Failures are
// non-critical and are ignored by the controller.
type Clipboard interface {
	WriteText(text string) error
}
