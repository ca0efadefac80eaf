package domain

import "time"

const DefaultCountry = "India"

type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

type Customer struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Addresses        []Address `json:"addresses"`
	DefaultAddressID *string   `json:"default_address_id"`
	CreatedAt        time.Time `json:"created_at"`
}
