package domain

import "strings"

// Address is a value object. Orders snapshot it at creation so later customer
// profile edits do not affect placed orders.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

func NewAddress(street, city, state, country, zipCode string) (Address, error) {
	fields := map[string]string{}
	if strings.TrimSpace(street) == "" {
		fields["street"] = "street cannot be empty"
	}
	if strings.TrimSpace(city) == "" {
		fields["city"] = "city cannot be empty"
	}
	if strings.TrimSpace(country) == "" {
		fields["country"] = "country cannot be empty"
	}
	if len(fields) > 0 {
		return Address{}, &ValidationError{Fields: fields}
	}

	return Address{
		Street:  strings.TrimSpace(street),
		City:    strings.TrimSpace(city),
		State:   strings.TrimSpace(state),
		Country: strings.TrimSpace(country),
		ZipCode: strings.TrimSpace(zipCode),
	}, nil
}
