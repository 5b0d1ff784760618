package domain

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Logo is the storefront mark. Fallback is set when the catalog had no usable logo
// and the built-in mark should be rendered instead.
type Logo struct {
	ImageURL string `json:"image_url,omitempty"`
	Fallback bool   `json:"fallback"`
}
