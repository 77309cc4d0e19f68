package domain

// MetaProductID is the metadata key carrying the owning product's ID on
// image-collection entries.
const MetaProductID = "product_id"

// ImageTensor is a normalized image in CHW layout, ready to be fed to an
// image embedding model.
type ImageTensor struct {
	Channels int
	Height   int
	Width    int
	// Pixels holds Channels*Height*Width values; pixel (c, y, x) lives at
	// index c*Height*Width + y*Width + x.
	Pixels []float32
}

// Len returns the expected number of pixel values for the tensor shape.
func (t ImageTensor) Len() int {
	return t.Channels * t.Height * t.Width
}
