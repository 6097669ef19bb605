package render

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 200

type QRRenderer struct{}

func encodeQR(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty QR payload")
	}
	return qrcode.Encode(payload, qrcode.High, size)
}

func (QRRenderer) Render(ctx context.Context, vm *ViewModel) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return encodeQR(vm.QRPayload, qrSize)
}

func (QRRenderer) ContentType() string { return "image/png" }
func (QRRenderer) Extension() string   { return "png" }
