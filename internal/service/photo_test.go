package service

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"staffdesk/internal/dto"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("编码 JPEG 失败: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("编码 GIF 失败: %v", err)
	}
	return buf.Bytes()
}

func upload(name string, data []byte) *dto.PhotoUpload {
	return &dto.PhotoUpload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func TestPreparePhoto_Accepts(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantExt  string
		wantType string
	}{
		{"png", encodePNG(t), "png", "image/png"},
		{"jpeg", encodeJPEG(t), "jpg", "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ve := preparePhoto(upload("x."+tt.wantExt, tt.data))
			if ve != nil {
				t.Fatalf("应通过校验，实际错误=%v", ve.Fields)
			}
			if p.ext != tt.wantExt || p.contentType != tt.wantType {
				t.Errorf("期望 %s/%s，实际 %s/%s", tt.wantExt, tt.wantType, p.ext, p.contentType)
			}
			key := p.newKey()
			if !strings.HasPrefix(key, PhotoNamespace+"/") || !strings.HasSuffix(key, "."+tt.wantExt) {
				t.Errorf("存储 key 格式不符: %s", key)
			}
		})
	}
}

func TestPreparePhoto_Rejects(t *testing.T) {
	big := append(encodePNG(t), make([]byte, MaxPhotoBytes)...)

	tests := []struct {
		name    string
		upload  *dto.PhotoUpload
		wantMsg string
	}{
		{"gif not allowed", upload("a.gif", encodeGIF(t)), "must be a file of type: jpeg, png, jpg"},
		{"not an image", upload("a.png", []byte("hello world")), "must be an image"},
		{"declared too large", &dto.PhotoUpload{Size: MaxPhotoBytes + 1, Content: bytes.NewReader(nil)}, "2048 kilobytes"},
		{"actual too large", &dto.PhotoUpload{Size: 10, Content: bytes.NewReader(big)}, "2048 kilobytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ve := preparePhoto(tt.upload)
			if p != nil || ve == nil {
				t.Fatal("不应通过校验")
			}
			msgs := ve.Fields["photo"]
			if !strings.Contains(strings.Join(msgs, " "), tt.wantMsg) {
				t.Errorf("期望包含 %q，实际=%v", tt.wantMsg, msgs)
			}
		})
	}
}

func TestPhotoContentType(t *testing.T) {
	cases := map[string]string{
		"employees/photos/a.png":  "image/png",
		"employees/photos/a.JPG":  "image/jpeg",
		"employees/photos/a.jpeg": "image/jpeg",
		"employees/photos/a.bin":  "application/octet-stream",
	}
	for key, want := range cases {
		if got := photoContentType(key); got != want {
			t.Errorf("photoContentType(%q)=%s, want %s", key, got, want)
		}
	}
}
