package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestPNG() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, testImage())).To(Succeed())
	return buf.Bytes()
}

func encodeTestJPEG() []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("PrepareImage", func() {
	var (
		data        []byte
		contentType string
		result      []byte
		err         error
	)

	JustBeforeEach(func() {
		result, err = PrepareImage(data, contentType)
	})

	When("the image is already PNG", func() {
		BeforeEach(func() {
			data = encodeTestPNG()
			contentType = "image/png"
		})

		It("returns it unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(data))
		})
	})

	When("the image is JPEG", func() {
		BeforeEach(func() {
			data = encodeTestJPEG()
			contentType = " Image/JPEG "
		})

		It("converts it to PNG", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(detectMimeType(result)).To(Equal("image/png"))
		})
	})

	When("the content type is missing", func() {
		BeforeEach(func() {
			data = encodeTestJPEG()
			contentType = ""
		})

		It("decodes it as a regular image", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(detectMimeType(result)).To(Equal("image/png"))
		})
	})

	When("the data is not an image", func() {
		BeforeEach(func() {
			data = []byte("definitely not an image")
			contentType = "image/jpeg"
		})

		It("returns an unsupported format error", func() {
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})
})

var _ = Describe("HEIC detection", func() {
	It("recognizes the ftyp brand", func() {
		header := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(header)).To(BeTrue())
	})

	It("ignores other formats", func() {
		Expect(isHEICFormat(encodeTestPNG())).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})

	It("recognizes HEIC mime types", func() {
		Expect(isHEICMimeType("image/heic")).To(BeTrue())
		Expect(isHEICMimeType("image/heif")).To(BeTrue())
		Expect(isHEICMimeType("image/jpeg")).To(BeFalse())
	})
})
