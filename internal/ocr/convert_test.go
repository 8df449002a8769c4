package ocr

import (
	"bytes"
	"image"
	"image/jpeg"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("normalizeImage", func() {
	It("should pass PNG input through unchanged", func() {
		data := tinyPNG()
		out, mimeType, err := normalizeImage(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(mimeType).To(Equal("image/png"))
		Expect(out).To(Equal(data))
	})

	It("should convert JPEG input to PNG", func() {
		var buf bytes.Buffer
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())

		out, mimeType, err := normalizeImage(buf.Bytes(), "image/jpeg")
		Expect(err).NotTo(HaveOccurred())
		Expect(mimeType).To(Equal("image/png"))
		// PNG magic bytes
		Expect(out[:8]).To(Equal([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}))
	})

	It("should reject undecodable input", func() {
		_, _, err := normalizeImage([]byte("not an image"), "image/jpeg")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("isHEIC", func() {
	It("should recognize the HEIC ftyp box", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic")...)
		data = append(data, make([]byte, 8)...)
		Expect(isHEIC(data)).To(BeTrue())
	})

	It("should reject short or foreign data", func() {
		Expect(isHEIC([]byte("short"))).To(BeFalse())
		Expect(isHEIC(tinyPNG())).To(BeFalse())
	})
})

var _ = Describe("isHEICMimeType", func() {
	It("should match heic and heif types regardless of case", func() {
		Expect(isHEICMimeType("image/heic")).To(BeTrue())
		Expect(isHEICMimeType(" IMAGE/HEIF ")).To(BeTrue())
		Expect(isHEICMimeType("image/jpeg")).To(BeFalse())
	})
})
