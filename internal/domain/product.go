package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Product is the normalized record returned by the scrape endpoint.
type Product struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Price keeps the backend's price as text. The scraper sends a string,
// other backends send a bare number.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a string or number: %w", err)
	}
	*p = Price(n.String())
	return nil
}

func (p Price) String() string {
	return string(p)
}
