package domain

const (
	DefaultTitle       = "Unknown Product"
	DefaultDescription = "No description available."
	DefaultPrice       = "N/A"
	DefaultImagePrompt = "An exciting product"
)

// AdTextRequest is the body of POST /generate_ad/.
type AdTextRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Refine      bool   `json:"refine"`
}

// AdImageRequest is the body of POST /generate_image/.
type AdImageRequest struct {
	Prompt string `json:"prompt"`
	Refine bool   `json:"refine"`
}

// NewAdTextRequest fills blank product fields with placeholders so the
// generator always receives something to write about.
func NewAdTextRequest(p Product, refine bool) AdTextRequest {
	req := AdTextRequest{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.String(),
		Refine:      refine,
	}
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	if req.Description == "" {
		req.Description = DefaultDescription
	}
	if req.Price == "" {
		req.Price = DefaultPrice
	}
	return req
}

// NewAdImageRequest prompts with the product description, not the ad text.
func NewAdImageRequest(p Product, refine bool) AdImageRequest {
	prompt := p.Description
	if prompt == "" {
		prompt = DefaultImagePrompt
	}
	return AdImageRequest{Prompt: prompt, Refine: refine}
}
